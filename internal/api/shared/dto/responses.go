package dto

import (
	"time"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/store/schema"
)

// ProfileResponse represents a profile
type ProfileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      *string   `json:"username"`
	WalletAddress *string   `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NFTResponse represents an NFT with its fractionalization state
type NFTResponse struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description"`
	ImageURL         *string   `json:"image_url"`
	TokenID          string    `json:"token_id"`
	Network          string    `json:"network"`
	IsFractionalized bool      `json:"is_fractionalized"`
	TotalFractions   *int      `json:"total_fractions"`
	FractionTokenID  *string   `json:"fraction_token_id"`
	SharePercentage  *string   `json:"share_percentage,omitempty"` // per-share ownership, display only
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NFTListResponse represents a paginated list of NFTs
type NFTListResponse struct {
	NFTs   []NFTResponse `json:"items"`
	Offset *int          `json:"offset,omitempty"`
	Total  int64         `json:"total"`
}

// FractionalizeResponse represents the result of a committed fractionalization
type FractionalizeResponse struct {
	NFT             NFTResponse `json:"nft"`
	FractionTokenID string      `json:"fraction_token_id"`
	TransactionHash string      `json:"transaction_hash"`
	WorkflowID      string      `json:"workflow_id"`
	RunID           string      `json:"run_id"`
}

// TransferResponse represents the result of a committed share transfer
type TransferResponse struct {
	NFTID           string `json:"nft_id"`
	FromUserID      string `json:"from_user_id"`
	ToUserID        string `json:"to_user_id"`
	Amount          int    `json:"amount"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	WorkflowID      string `json:"workflow_id"`
	RunID           string `json:"run_id"`
}

// HoldingResponse represents a single share holding
type HoldingResponse struct {
	HolderID  string    `json:"holder_id"`
	Amount    int       `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HoldingListResponse represents all holdings of an NFT
type HoldingListResponse struct {
	Holdings       []HoldingResponse `json:"items"`
	TotalFractions *int              `json:"total_fractions"`
}

// TransactionResponse represents an audit log entry
type TransactionResponse struct {
	ID              string    `json:"id"`
	NFTID           string    `json:"nft_id"`
	Type            string    `json:"type"`
	FromUserID      *string   `json:"from_user_id"`
	ToUserID        *string   `json:"to_user_id"`
	Amount          *int      `json:"amount"`
	TransactionHash *string   `json:"transaction_hash"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionListResponse represents a paginated transaction log
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"items"`
	Offset       *int                  `json:"offset,omitempty"`
}

// MapProfileToDTO maps a schema.Profile to ProfileResponse
func MapProfileToDTO(profile *schema.Profile) *ProfileResponse {
	if profile == nil {
		return nil
	}

	return &ProfileResponse{
		ID:            profile.ID,
		Email:         profile.Email,
		Username:      profile.Username,
		WalletAddress: profile.WalletAddress,
		CreatedAt:     profile.CreatedAt,
		UpdatedAt:     profile.UpdatedAt,
	}
}

// MapNFTToDTO maps a schema.NFT to NFTResponse
func MapNFTToDTO(nft *schema.NFT) *NFTResponse {
	if nft == nil {
		return nil
	}

	resp := &NFTResponse{
		ID:               nft.ID,
		OwnerID:          nft.OwnerID,
		Name:             nft.Name,
		Description:      nft.Description,
		ImageURL:         nft.ImageURL,
		TokenID:          nft.TokenID,
		Network:          string(nft.Network),
		IsFractionalized: nft.IsFractionalized,
		TotalFractions:   nft.TotalFractions,
		FractionTokenID:  nft.FractionTokenID,
		CreatedAt:        nft.CreatedAt,
		UpdatedAt:        nft.UpdatedAt,
	}

	if nft.IsFractionalized && nft.TotalFractions != nil && *nft.TotalFractions > 0 {
		pct := domain.SharePercentage(*nft.TotalFractions)
		resp.SharePercentage = &pct
	}

	return resp
}

// MapHoldingToDTO maps a schema.FractionalToken to HoldingResponse
func MapHoldingToDTO(holding *schema.FractionalToken) *HoldingResponse {
	return &HoldingResponse{
		HolderID:  holding.HolderID,
		Amount:    holding.Amount,
		UpdatedAt: holding.UpdatedAt,
	}
}

// MapTransactionToDTO maps a schema.Transaction to TransactionResponse
func MapTransactionToDTO(tx *schema.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              tx.ID,
		NFTID:           tx.NFTID,
		Type:            string(tx.TransactionType),
		FromUserID:      tx.FromUserID,
		ToUserID:        tx.ToUserID,
		Amount:          tx.Amount,
		TransactionHash: tx.TransactionHash,
		Status:          string(tx.Status),
		CreatedAt:       tx.CreatedAt,
	}
}
