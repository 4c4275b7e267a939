package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fractionft/fractionft/internal/domain"
	"github.com/fractionft/fractionft/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings
// into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// GetProfileByID retrieves a profile by its account identity
func (s *pgStore) GetProfileByID(ctx context.Context, id string) (*schema.Profile, error) {
	var profile schema.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// EnsureProfile creates the profile row for an authenticated identity if missing
func (s *pgStore) EnsureProfile(ctx context.Context, id string, email string) (*schema.Profile, error) {
	profile := schema.Profile{
		ID:    id,
		Email: email,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	// Re-read so callers always see the stored row, created now or earlier
	var stored schema.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to get ensured profile: %w", err)
	}
	return &stored, nil
}

// UpdateProfile applies a partial update to a profile and returns the new row
func (s *pgStore) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*schema.Profile, error) {
	updates := map[string]interface{}{
		"updated_at": gorm.Expr("now()"),
	}
	if input.Username != nil {
		updates["username"] = *input.Username
	}
	if input.WalletAddress != nil {
		updates["wallet_address"] = *input.WalletAddress
	}

	result := s.db.WithContext(ctx).Model(&schema.Profile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrProfileNotFound
	}

	var profile schema.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to get updated profile: %w", err)
	}
	return &profile, nil
}

// CreateNFT registers a new, not-yet-fractionalized NFT record
func (s *pgStore) CreateNFT(ctx context.Context, input CreateNFTInput) (*schema.NFT, error) {
	nft := schema.NFT{
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		TokenID:     input.TokenID,
		Network:     domain.Network(input.Network),
	}

	if err := s.db.WithContext(ctx).Create(&nft).Error; err != nil {
		return nil, fmt.Errorf("failed to create nft: %w", err)
	}
	return &nft, nil
}

// GetNFTByID retrieves an NFT by its internal ID
func (s *pgStore) GetNFTByID(ctx context.Context, id string) (*schema.NFT, error) {
	var nft schema.NFT
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&nft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}
	return &nft, nil
}

// GetNFTsByOwner retrieves an owner's NFTs ordered by creation time descending
func (s *pgStore) GetNFTsByOwner(ctx context.Context, ownerID string, limit int, offset int) ([]*schema.NFT, int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&schema.NFT{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count nfts: %w", err)
	}

	var nfts []*schema.NFT
	err = s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&nfts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get nfts by owner: %w", err)
	}

	return nfts, total, nil
}

// FractionalizeNFT atomically applies the three bookkeeping mutations of a
// fractionalization: flag flip, initiator holding, audit log entry.
func (s *pgStore) FractionalizeNFT(ctx context.Context, input FractionalizeInput) (*schema.NFT, error) {
	var nft schema.NFT

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Guarded flag flip. The is_fractionalized predicate makes this a
		// compare-and-swap: of two racing transactions only one affects a row.
		result := tx.Model(&schema.NFT{}).
			Where("id = ? AND is_fractionalized = ?", input.NFTID, false).
			Updates(map[string]interface{}{
				"is_fractionalized": true,
				"total_fractions":   input.ShareCount,
				"fraction_token_id": input.FractionTokenID,
				"updated_at":        gorm.Expr("now()"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark nft fractionalized: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Distinguish a missing record from a lost race
			var existing schema.NFT
			if err := tx.Where("id = ?", input.NFTID).First(&existing).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNFTNotFound
				}
				return fmt.Errorf("failed to check nft state: %w", err)
			}
			return domain.ErrAlreadyFractionalized
		}

		// 2. The initiator starts out holding the full fractional supply
		holding := schema.FractionalToken{
			NFTID:    input.NFTID,
			HolderID: input.HolderID,
			Amount:   input.ShareCount,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return fmt.Errorf("failed to create holding: %w", err)
		}

		// 3. Append the audit log entry
		amount := input.ShareCount
		txHash := input.TransactionHash
		entry := schema.Transaction{
			NFTID:           input.NFTID,
			ToUserID:        &input.HolderID,
			TransactionType: schema.TransactionTypeFractionalization,
			Amount:          &amount,
			TransactionHash: &txHash,
			Status:          schema.TransactionStatusCompleted,
			Raw:             input.Receipt,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create transaction entry: %w", err)
		}

		if err := tx.Where("id = ?", input.NFTID).First(&nft).Error; err != nil {
			return fmt.Errorf("failed to reload nft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &nft, nil
}

// TransferShares atomically moves shares between two holders
func (s *pgStore) TransferShares(ctx context.Context, input TransferSharesInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var nft schema.NFT
		if err := tx.Where("id = ?", input.NFTID).First(&nft).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNFTNotFound
			}
			return fmt.Errorf("failed to get nft: %w", err)
		}
		if !nft.IsFractionalized {
			return domain.ErrNotFractionalized
		}

		// Lock the sender's holding so concurrent transfers serialize per holder
		var sender schema.FractionalToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("nft_id = ? AND holder_id = ?", input.NFTID, input.FromUserID).
			First(&sender).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrHoldingNotFound
			}
			return fmt.Errorf("failed to get sender holding: %w", err)
		}
		if sender.Amount < input.Amount {
			return domain.ErrInsufficientShares
		}

		// Debit the sender; delete the row instead of leaving a zero holding
		if sender.Amount == input.Amount {
			if err := tx.Delete(&sender).Error; err != nil {
				return fmt.Errorf("failed to delete emptied holding: %w", err)
			}
		} else {
			err := tx.Model(&sender).Updates(map[string]interface{}{
				"amount":     gorm.Expr("amount - ?", input.Amount),
				"updated_at": gorm.Expr("now()"),
			}).Error
			if err != nil {
				return fmt.Errorf("failed to debit sender holding: %w", err)
			}
		}

		// Credit the recipient, creating the holding on first receipt
		recipient := schema.FractionalToken{
			NFTID:    input.NFTID,
			HolderID: input.ToUserID,
			Amount:   input.Amount,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "nft_id"}, {Name: "holder_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount":     gorm.Expr("fractional_tokens.amount + ?", input.Amount),
				"updated_at": gorm.Expr("now()"),
			}),
		}).Create(&recipient).Error
		if err != nil {
			return fmt.Errorf("failed to credit recipient holding: %w", err)
		}

		// Append the audit log entry
		amount := input.Amount
		entry := schema.Transaction{
			NFTID:           input.NFTID,
			FromUserID:      &input.FromUserID,
			ToUserID:        &input.ToUserID,
			TransactionType: schema.TransactionTypeTransfer,
			Amount:          &amount,
			Status:          schema.TransactionStatusCompleted,
		}
		if input.TransactionHash != "" {
			entry.TransactionHash = &input.TransactionHash
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create transaction entry: %w", err)
		}

		return nil
	})
}

// GetHoldingsByNFT retrieves all share holdings of an NFT
func (s *pgStore) GetHoldingsByNFT(ctx context.Context, nftID string) ([]*schema.FractionalToken, error) {
	var holdings []*schema.FractionalToken
	err := s.db.WithContext(ctx).
		Where("nft_id = ?", nftID).
		Order("amount DESC").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	return holdings, nil
}

// GetTransactionsByNFT retrieves an NFT's transaction log, newest first
func (s *pgStore) GetTransactionsByNFT(ctx context.Context, nftID string, limit int, offset int) ([]*schema.Transaction, error) {
	var transactions []*schema.Transaction
	err := s.db.WithContext(ctx).
		Where("nft_id = ?", nftID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, nil
}

// FindOrphanedFractionalizations finds fractionalized NFTs with no holding
func (s *pgStore) FindOrphanedFractionalizations(ctx context.Context, cutoff time.Time, limit int) ([]*schema.NFT, error) {
	var nfts []*schema.NFT
	err := s.db.WithContext(ctx).
		Where("is_fractionalized = ?", true).
		Where("updated_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM fractional_tokens WHERE fractional_tokens.nft_id = nfts.id)").
		Order("updated_at ASC").
		Limit(limit).
		Find(&nfts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned fractionalizations: %w", err)
	}
	return nfts, nil
}

// RevertFractionalization rolls back an orphaned fractionalization
func (s *pgStore) RevertFractionalization(ctx context.Context, nftID string) (bool, error) {
	reverted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The NOT EXISTS guard re-checks inside the transaction; a holding may
		// have appeared since the sweep selected this NFT.
		result := tx.Model(&schema.NFT{}).
			Where("id = ? AND is_fractionalized = ?", nftID, true).
			Where("NOT EXISTS (SELECT 1 FROM fractional_tokens WHERE fractional_tokens.nft_id = nfts.id)").
			Updates(map[string]interface{}{
				"is_fractionalized": false,
				"total_fractions":   nil,
				"fraction_token_id": nil,
				"updated_at":        gorm.Expr("now()"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to revert nft: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		entry := schema.Transaction{
			NFTID:           nftID,
			TransactionType: schema.TransactionTypeReversal,
			Status:          schema.TransactionStatusReverted,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create reversal entry: %w", err)
		}

		reverted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return reverted, nil
}
