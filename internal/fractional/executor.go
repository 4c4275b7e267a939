package fractional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"gorm.io/datatypes"

	"github.com/fractionft/fractionft/internal/adapter"
	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/issuer"
	"github.com/fractionft/fractionft/internal/messaging"
	"github.com/fractionft/fractionft/internal/store"
	"github.com/fractionft/fractionft/internal/types"
)

// IssueTokenInput is the payload for minting the fungible share token
type IssueTokenInput struct {
	NFTID      string `json:"nft_id"`
	NFTName    string `json:"nft_name"`
	ShareCount int    `json:"share_count"`
}

// ApplyFractionalizationInput is the payload for the bookkeeping step of a
// fractionalization. The receipt comes from the issuance step and is stored
// verbatim on the audit log entry.
type ApplyFractionalizationInput struct {
	NFTID    string              `json:"nft_id"`
	HolderID string              `json:"holder_id"`
	Receipt  issuer.IssueReceipt `json:"receipt"`
}

// ApplyFractionalizationResult reports the committed bookkeeping
type ApplyFractionalizationResult struct {
	FractionTokenID string `json:"fraction_token_id"`
	TransactionHash string `json:"transaction_hash"`
}

// MirrorTransferInput is the payload for moving share tokens on the ledger
// ahead of the bookkeeping step
type MirrorTransferInput struct {
	FractionTokenID string `json:"fraction_token_id"`
	ToUserID        string `json:"to_user_id"`
	Amount          int    `json:"amount"`
}

// ApplyTransferInput is the payload for the bookkeeping step of a share
// transfer
type ApplyTransferInput struct {
	NFTID           string `json:"nft_id"`
	FromUserID      string `json:"from_user_id"`
	ToUserID        string `json:"to_user_id"`
	Amount          int    `json:"amount"`
	TransactionHash string `json:"transaction_hash"`
}

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks -mock_names=Executor=MockExecutor
type Executor interface {
	// IssueFractionalToken mints the fungible share token backing an NFT.
	// This is the only step with an external effect before bookkeeping.
	IssueFractionalToken(ctx context.Context, input IssueTokenInput) (*issuer.IssueReceipt, error)

	// ApplyFractionalization applies the three bookkeeping mutations in one
	// database transaction: flag flip, initial holding, audit log entry
	ApplyFractionalization(ctx context.Context, input ApplyFractionalizationInput) (*ApplyFractionalizationResult, error)

	// RetireFractionalToken removes an issued share token. The compensating
	// action when bookkeeping fails after issuance succeeded.
	RetireFractionalToken(ctx context.Context, tokenID string) error

	// MirrorShareTransfer moves share tokens on the ledger when the recipient
	// has a wallet on file. Returns nil when there is nothing to mirror.
	MirrorShareTransfer(ctx context.Context, input MirrorTransferInput) (*issuer.TransferReceipt, error)

	// ApplyShareTransfer debits, credits and logs a share transfer in one
	// database transaction
	ApplyShareTransfer(ctx context.Context, input ApplyTransferInput) error

	// PublishOwnershipEvent publishes an ownership change to the message broker
	PublishOwnershipEvent(ctx context.Context, event *domain.OwnershipEvent) error
}

// executor is the concrete implementation of Executor
type executor struct {
	store     store.Store
	issuer    issuer.TokenIssuer
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewExecutor creates a new executor instance
func NewExecutor(
	s store.Store,
	iss issuer.TokenIssuer,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Executor {
	return &executor{
		store:     s,
		issuer:    iss,
		publisher: publisher,
		clock:     clock,
	}
}

// shareTokenSymbol derives a ticker-style symbol from an NFT name, e.g.
// "Cosmic Whale #42" becomes "FRCCW". Falls back to "FRC" for empty names.
func shareTokenSymbol(nftName string) string {
	symbol := "FRC"
	for _, field := range strings.Fields(nftName) {
		for _, r := range field {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				symbol += strings.ToUpper(string(r))
				break
			}
		}
		if len(symbol) >= 8 {
			break
		}
	}
	return symbol
}

func (e *executor) IssueFractionalToken(ctx context.Context, input IssueTokenInput) (*issuer.IssueReceipt, error) {
	if !domain.ValidShareCount(input.ShareCount) {
		return nil, temporal.NewNonRetryableApplicationError(
			domain.ErrInvalidShareCount.Error(),
			"InvalidShareCount",
			domain.ErrInvalidShareCount,
		)
	}

	name := fmt.Sprintf("%s Shares", input.NFTName)
	receipt, err := e.issuer.CreateFractionalToken(ctx, name, shareTokenSymbol(input.NFTName), input.ShareCount)
	if err != nil {
		return nil, fmt.Errorf("failed to issue fractional token: %w", err)
	}

	return receipt, nil
}

func (e *executor) ApplyFractionalization(ctx context.Context, input ApplyFractionalizationInput) (*ApplyFractionalizationResult, error) {
	raw, err := json.Marshal(input.Receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issuance receipt: %w", err)
	}

	hash, err := issuer.ReceiptHash(input.Receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to hash issuance receipt: %w", err)
	}

	_, err = e.store.FractionalizeNFT(ctx, store.FractionalizeInput{
		NFTID:           input.NFTID,
		HolderID:        input.HolderID,
		ShareCount:      input.Receipt.Supply,
		FractionTokenID: input.Receipt.TokenID.String(),
		TransactionHash: hash,
		Receipt:         datatypes.JSON(raw),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNFTNotFound):
			return nil, temporal.NewNonRetryableApplicationError(
				"nft not found",
				"NFTNotFound",
				domain.ErrNFTNotFound,
			)
		case errors.Is(err, domain.ErrAlreadyFractionalized):
			return nil, temporal.NewNonRetryableApplicationError(
				"nft is already fractionalized",
				"AlreadyFractionalized",
				domain.ErrAlreadyFractionalized,
			)
		}
		return nil, fmt.Errorf("failed to apply fractionalization: %w", err)
	}

	return &ApplyFractionalizationResult{
		FractionTokenID: input.Receipt.TokenID.String(),
		TransactionHash: hash,
	}, nil
}

func (e *executor) RetireFractionalToken(ctx context.Context, tokenID string) error {
	if err := e.issuer.RetireToken(ctx, domain.TokenID(tokenID)); err != nil {
		return fmt.Errorf("failed to retire fractional token: %w", err)
	}
	return nil
}

func (e *executor) MirrorShareTransfer(ctx context.Context, input MirrorTransferInput) (*issuer.TransferReceipt, error) {
	profile, err := e.store.GetProfileByID(ctx, input.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient profile: %w", err)
	}
	if profile == nil || types.StringNilOrEmpty(profile.WalletAddress) {
		// Nothing to mirror, shares live in the bookkeeping only
		return nil, nil
	}

	receipt, err := e.issuer.Transfer(ctx,
		domain.TokenID(input.FractionTokenID),
		domain.AccountID(*profile.WalletAddress),
		input.Amount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer share tokens: %w", err)
	}

	return receipt, nil
}

func (e *executor) ApplyShareTransfer(ctx context.Context, input ApplyTransferInput) error {
	err := e.store.TransferShares(ctx, store.TransferSharesInput{
		NFTID:           input.NFTID,
		FromUserID:      input.FromUserID,
		ToUserID:        input.ToUserID,
		Amount:          input.Amount,
		TransactionHash: input.TransactionHash,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNFTNotFound):
			return temporal.NewNonRetryableApplicationError(
				"nft not found",
				"NFTNotFound",
				domain.ErrNFTNotFound,
			)
		case errors.Is(err, domain.ErrNotFractionalized):
			return temporal.NewNonRetryableApplicationError(
				"nft is not fractionalized",
				"NotFractionalized",
				domain.ErrNotFractionalized,
			)
		case errors.Is(err, domain.ErrHoldingNotFound):
			return temporal.NewNonRetryableApplicationError(
				"sender holds no shares",
				"HoldingNotFound",
				domain.ErrHoldingNotFound,
			)
		case errors.Is(err, domain.ErrInsufficientShares):
			return temporal.NewNonRetryableApplicationError(
				"transfer exceeds sender balance",
				"InsufficientShares",
				domain.ErrInsufficientShares,
			)
		}
		return fmt.Errorf("failed to apply share transfer: %w", err)
	}

	return nil
}

func (e *executor) PublishOwnershipEvent(ctx context.Context, event *domain.OwnershipEvent) error {
	if event.EventID == "" {
		event.EventID = domain.NewOwnershipEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.clock.Now().UTC()
	}

	// Guard against broker stalls holding the activity open
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.publisher.PublishEvent(publishCtx, event); err != nil {
		return fmt.Errorf("failed to publish ownership event: %w", err)
	}

	return nil
}
