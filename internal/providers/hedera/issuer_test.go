package hedera_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/providers/hedera"
	"github.com/fractionft/fractionft/internal/wallet"
)

type approvingExtension struct{}

func (approvingExtension) Approve(pairingString string) (*wallet.Metadata, error) {
	return &wallet.Metadata{
		AccountID: "0.0.54321",
		Network:   domain.NetworkHederaTestnet,
		PublicKey: "302a300506032b6570032100aa",
	}, nil
}

func (approvingExtension) Sign(payload []byte) ([]byte, error) {
	return payload, nil
}

func TestLedgerIssuer_RequiresConnectedSession(t *testing.T) {
	session := wallet.NewSession(nil, domain.NetworkHederaTestnet, "fractionft")
	iss := hedera.NewLedgerIssuer(nil, session)
	ctx := context.Background()

	_, err := iss.CreateFractionalToken(ctx, "Shares", "FRC", 100)
	assert.ErrorIs(t, err, domain.ErrWalletNotConnected)

	_, err = iss.Transfer(ctx, "0.0.5001", "0.0.54321", 10)
	assert.ErrorIs(t, err, domain.ErrWalletNotConnected)

	err = iss.RetireToken(ctx, "0.0.5001")
	assert.ErrorIs(t, err, domain.ErrWalletNotConnected)
}

func TestLedgerIssuer_ConnectedSessionStillUnimplemented(t *testing.T) {
	session := wallet.NewSession(approvingExtension{}, domain.NetworkHederaTestnet, "fractionft")
	_, err := session.Connect()
	require.NoError(t, err)

	iss := hedera.NewLedgerIssuer(nil, session)

	_, err = iss.CreateFractionalToken(context.Background(), "Shares", "FRC", 100)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
