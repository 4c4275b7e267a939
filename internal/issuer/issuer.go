package issuer

import (
	"context"

	"github.com/fractionft/fractionft/internal/domain"
)

// MintReceipt is the result of creating a non-fungible token
type MintReceipt struct {
	TokenID       domain.TokenID `json:"token_id"`
	SerialNumber  string         `json:"serial_number"`
	TransactionID string         `json:"transaction_id"`
}

// IssueReceipt is the result of creating a fungible share token
type IssueReceipt struct {
	TokenID       domain.TokenID `json:"token_id"`
	Supply        int            `json:"supply"`
	TransactionID string         `json:"transaction_id"`
}

// TransferReceipt is the result of moving share tokens between accounts
type TransferReceipt struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// TokenIssuer is the token-issuance boundary. The core workflow only ever
// talks to this interface; whether tokens come from a real ledger or the
// deterministic development issuer is wiring.
//
//go:generate mockgen -source=issuer.go -destination=../mocks/issuer.go -package=mocks -mock_names=TokenIssuer=MockTokenIssuer
type TokenIssuer interface {
	// CreateNFT issues a single-supply non-fungible token
	CreateNFT(ctx context.Context, name string, symbol string, metadata string) (*MintReceipt, error)
	// CreateFractionalToken issues a fungible token with a fixed supply.
	// The identifier is unique per call, hence unique per NFT.
	CreateFractionalToken(ctx context.Context, name string, symbol string, supply int) (*IssueReceipt, error)
	// Transfer moves share tokens to another account
	Transfer(ctx context.Context, tokenID domain.TokenID, to domain.AccountID, amount int) (*TransferReceipt, error)
	// RetireToken removes an issued token; the compensating action when
	// bookkeeping fails after issuance succeeded
	RetireToken(ctx context.Context, tokenID domain.TokenID) error
}
