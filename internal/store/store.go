package store

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/fractionft/fractionft/internal/store/schema"
)

// CreateNFTInput holds the fields for registering an NFT record
type CreateNFTInput struct {
	OwnerID     string
	Name        string
	Description *string
	ImageURL    *string
	TokenID     string
	Network     string
}

// FractionalizeInput holds the bookkeeping payload for a fractionalization.
// All three mutations (flag flip, initial holding, log entry) are applied in
// one database transaction.
type FractionalizeInput struct {
	NFTID           string
	HolderID        string
	ShareCount      int
	FractionTokenID string
	TransactionHash string
	Receipt         datatypes.JSON
}

// TransferSharesInput holds the payload for moving shares between holders
type TransferSharesInput struct {
	NFTID           string
	FromUserID      string
	ToUserID        string
	Amount          int
	TransactionHash string
}

// UpdateProfileInput holds the mutable profile fields; nil means unchanged
type UpdateProfileInput struct {
	Username      *string
	WalletAddress *string
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetProfileByID retrieves a profile by its account identity, nil when absent
	GetProfileByID(ctx context.Context, id string) (*schema.Profile, error)
	// EnsureProfile creates the profile row for an authenticated identity if missing
	EnsureProfile(ctx context.Context, id string, email string) (*schema.Profile, error)
	// UpdateProfile applies a partial update to a profile and returns the new row
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*schema.Profile, error)

	// CreateNFT registers a new, not-yet-fractionalized NFT record
	CreateNFT(ctx context.Context, input CreateNFTInput) (*schema.NFT, error)
	// GetNFTByID retrieves an NFT by its internal ID, nil when absent
	GetNFTByID(ctx context.Context, id string) (*schema.NFT, error)
	// GetNFTsByOwner retrieves an owner's NFTs ordered by creation time descending
	GetNFTsByOwner(ctx context.Context, ownerID string, limit int, offset int) ([]*schema.NFT, int64, error)

	// FractionalizeNFT atomically flips the fractionalization flag, creates the
	// initiator's holding and appends the audit log entry. The flag flip is a
	// guarded UPDATE (WHERE is_fractionalized = false) so concurrent calls on
	// the same NFT yield exactly one success; the loser gets
	// domain.ErrAlreadyFractionalized.
	FractionalizeNFT(ctx context.Context, input FractionalizeInput) (*schema.NFT, error)

	// TransferShares atomically debits the sender's holding, credits the
	// recipient's and appends a transfer log entry. Holdings that reach zero
	// are deleted.
	TransferShares(ctx context.Context, input TransferSharesInput) error

	// GetHoldingsByNFT retrieves all share holdings of an NFT
	GetHoldingsByNFT(ctx context.Context, nftID string) ([]*schema.FractionalToken, error)
	// GetTransactionsByNFT retrieves an NFT's transaction log, newest first
	GetTransactionsByNFT(ctx context.Context, nftID string, limit int, offset int) ([]*schema.Transaction, error)

	// FindOrphanedFractionalizations finds NFTs marked fractionalized with no
	// surviving holding, last touched before the cutoff. Reconciliation input.
	FindOrphanedFractionalizations(ctx context.Context, cutoff time.Time, limit int) ([]*schema.NFT, error)
	// RevertFractionalization rolls the fractionalized flag back on an orphaned
	// NFT and appends a reversal log entry. Returns false when the NFT was not
	// in an orphaned state anymore (a holding appeared or the flag is clear).
	RevertFractionalization(ctx context.Context, nftID string) (bool, error)
}
