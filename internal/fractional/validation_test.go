package fractional_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/fractional"
	"github.com/fractionft/fractionft/internal/store/schema"
)

func TestValidateFractionalize(t *testing.T) {
	owned := &schema.NFT{ID: "nft-1", OwnerID: "user-1"}
	fractionalized := &schema.NFT{ID: "nft-2", OwnerID: "user-1", IsFractionalized: true}

	tests := []struct {
		name       string
		nft        *schema.NFT
		actingUser string
		shareCount int
		wantErr    error
	}{
		{
			name:       "valid",
			nft:        owned,
			actingUser: "user-1",
			shareCount: 100,
		},
		{
			name:       "share count below minimum",
			nft:        owned,
			actingUser: "user-1",
			shareCount: 1,
			wantErr:    domain.ErrInvalidShareCount,
		},
		{
			name:       "share count above maximum",
			nft:        owned,
			actingUser: "user-1",
			shareCount: 10001,
			wantErr:    domain.ErrInvalidShareCount,
		},
		{
			name:       "share count checked before nft lookup",
			nft:        nil,
			actingUser: "user-1",
			shareCount: 0,
			wantErr:    domain.ErrInvalidShareCount,
		},
		{
			name:       "nft missing",
			nft:        nil,
			actingUser: "user-1",
			shareCount: 100,
			wantErr:    domain.ErrNFTNotFound,
		},
		{
			name:       "acting user is not the owner",
			nft:        owned,
			actingUser: "user-2",
			shareCount: 100,
			wantErr:    domain.ErrNotOwner,
		},
		{
			name:       "already fractionalized",
			nft:        fractionalized,
			actingUser: "user-1",
			shareCount: 100,
			wantErr:    domain.ErrAlreadyFractionalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fractional.ValidateFractionalize(tt.nft, tt.actingUser, tt.shareCount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransfer(t *testing.T) {
	fractionalized := &schema.NFT{ID: "nft-1", OwnerID: "user-1", IsFractionalized: true}
	plain := &schema.NFT{ID: "nft-2", OwnerID: "user-1"}

	tests := []struct {
		name    string
		nft     *schema.NFT
		from    string
		to      string
		amount  int
		wantErr error
	}{
		{
			name:   "valid",
			nft:    fractionalized,
			from:   "user-1",
			to:     "user-2",
			amount: 10,
		},
		{
			name:    "zero amount",
			nft:     fractionalized,
			from:    "user-1",
			to:      "user-2",
			amount:  0,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			nft:     fractionalized,
			from:    "user-1",
			to:      "user-2",
			amount:  -5,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "nft missing",
			nft:     nil,
			from:    "user-1",
			to:      "user-2",
			amount:  10,
			wantErr: domain.ErrNFTNotFound,
		},
		{
			name:    "not fractionalized",
			nft:     plain,
			from:    "user-1",
			to:      "user-2",
			amount:  10,
			wantErr: domain.ErrNotFractionalized,
		},
		{
			name:    "self transfer",
			nft:     fractionalized,
			from:    "user-1",
			to:      "user-1",
			amount:  10,
			wantErr: domain.ErrSelfTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fractional.ValidateTransfer(tt.nft, tt.from, tt.to, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
