package fractional

import (
	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/store/schema"
)

// ValidateFractionalize checks the preconditions for splitting an NFT into
// shares. It is a pure gate over an already-loaded row; the store re-enforces
// the fractionalization flag atomically, so passing here does not guarantee
// the mutation will win a concurrent race.
func ValidateFractionalize(nft *schema.NFT, actingUserID string, shareCount int) error {
	if !domain.ValidShareCount(shareCount) {
		return domain.ErrInvalidShareCount
	}
	if nft == nil {
		return domain.ErrNFTNotFound
	}
	if nft.OwnerID != actingUserID {
		return domain.ErrNotOwner
	}
	if nft.IsFractionalized {
		return domain.ErrAlreadyFractionalized
	}
	return nil
}

// ValidateTransfer checks the preconditions for moving shares between
// holders. Balance checks happen in the store under a row lock.
func ValidateTransfer(nft *schema.NFT, fromUserID string, toUserID string, amount int) error {
	if amount < 1 {
		return domain.ErrInvalidAmount
	}
	if nft == nil {
		return domain.ErrNFTNotFound
	}
	if !nft.IsFractionalized {
		return domain.ErrNotFractionalized
	}
	if fromUserID == toUserID {
		return domain.ErrSelfTransfer
	}
	return nil
}
