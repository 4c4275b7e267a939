package hedera

import (
	"context"
	"fmt"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/issuer"
	"github.com/fractionft/fractionft/internal/wallet"
)

// ledgerIssuer is the production adapter of the token-issuance boundary.
// Reads go through the mirror node; mutating submissions need a transaction
// signed by the wallet session, and no signing path exists yet, so every
// mutation fails with domain.ErrNotImplemented after the session check.
type ledgerIssuer struct {
	client  Client
	session *wallet.Session
}

// NewLedgerIssuer creates the mirror-node-backed issuer adapter
func NewLedgerIssuer(client Client, session *wallet.Session) issuer.TokenIssuer {
	return &ledgerIssuer{
		client:  client,
		session: session,
	}
}

// requireSession ensures a connected signing session before any submission
func (l *ledgerIssuer) requireSession() error {
	if l.session == nil || !l.session.IsConnected() {
		return domain.ErrWalletNotConnected
	}
	return nil
}

func (l *ledgerIssuer) CreateNFT(ctx context.Context, name string, symbol string, metadata string) (*issuer.MintReceipt, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("nft creation: %w", domain.ErrNotImplemented)
}

func (l *ledgerIssuer) CreateFractionalToken(ctx context.Context, name string, symbol string, supply int) (*issuer.IssueReceipt, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("fractional token issuance: %w", domain.ErrNotImplemented)
}

func (l *ledgerIssuer) Transfer(ctx context.Context, tokenID domain.TokenID, to domain.AccountID, amount int) (*issuer.TransferReceipt, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("share transfer: %w", domain.ErrNotImplemented)
}

func (l *ledgerIssuer) RetireToken(ctx context.Context, tokenID domain.TokenID) error {
	if err := l.requireSession(); err != nil {
		return err
	}
	return fmt.Errorf("token retirement: %w", domain.ErrNotImplemented)
}
