package dto

import (
	"fmt"

	apierrors "github.com/fractionft/fractionft/internal/api/shared/errors"
	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/types"
)

// RegisterNFTRequest represents the request body for registering an NFT
type RegisterNFTRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	TokenID     string  `json:"token_id"`
	Network     string  `json:"network"`
}

// Validate validates the request body
func (r *RegisterNFTRequest) Validate() error {
	if r.Name == "" {
		return apierrors.NewValidationError("name is required")
	}
	if r.TokenID == "" {
		return apierrors.NewValidationError("token_id is required")
	}
	if !domain.TokenID(r.TokenID).Valid() {
		return apierrors.NewValidationError(fmt.Sprintf("invalid token_id: %s", r.TokenID))
	}
	if r.Network != "" && !domain.IsValidNetwork(domain.Network(r.Network)) {
		return apierrors.NewValidationError(fmt.Sprintf("invalid network: %s", r.Network))
	}
	return nil
}

// FractionalizeRequest represents the request body for fractionalizing an NFT
type FractionalizeRequest struct {
	Fractions int `json:"fractions"`
}

// Validate validates the request body
func (r *FractionalizeRequest) Validate() error {
	if !domain.ValidShareCount(r.Fractions) {
		return apierrors.NewValidationError(fmt.Sprintf(
			"fractions must be between %d and %d", domain.MinShareCount, domain.MaxShareCount,
		))
	}
	return nil
}

// TransferRequest represents the request body for transferring shares
type TransferRequest struct {
	ToUserID string `json:"to_user_id"`
	Amount   int    `json:"amount"`
}

// Validate validates the request body
func (r *TransferRequest) Validate() error {
	if r.ToUserID == "" {
		return apierrors.NewValidationError("to_user_id is required")
	}
	if r.Amount < 1 {
		return apierrors.NewValidationError("amount must be positive")
	}
	return nil
}

// UpdateProfileRequest represents the request body for updating a profile.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Username      *string `json:"username"`
	WalletAddress *string `json:"wallet_address"`
}

// Validate validates the request body
func (r *UpdateProfileRequest) Validate() error {
	if r.Username == nil && r.WalletAddress == nil {
		return apierrors.NewValidationError("at least one field must be provided")
	}
	if !types.StringNilOrEmpty(r.WalletAddress) && !domain.AccountID(*r.WalletAddress).Valid() {
		return apierrors.NewValidationError(fmt.Sprintf("invalid wallet_address: %s", *r.WalletAddress))
	}
	return nil
}
