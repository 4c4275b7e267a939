package schema

import (
	"time"
)

// FractionalToken represents the fractional_tokens table - tracks how many
// shares of a fractionalized NFT each profile holds. One row per
// (nft_id, holder_id) pair; a row always carries at least one share, holdings
// that reach zero are deleted rather than kept around.
type FractionalToken struct {
	// ID is the internal database primary key
	ID string `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	// NFTID references the fractionalized NFT
	NFTID string `gorm:"column:nft_id;not null;type:uuid;uniqueIndex:idx_fractional_tokens_nft_holder,priority:1"`
	// HolderID references the profile holding the shares
	HolderID string `gorm:"column:holder_id;not null;type:uuid;uniqueIndex:idx_fractional_tokens_nft_holder,priority:2"`
	// Amount is the number of shares held (>= 1)
	Amount int `gorm:"column:amount;not null;default:1;check:amount >= 1"`
	// CreatedAt is the timestamp when this holding was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this holding was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	NFT    NFT     `gorm:"foreignKey:NFTID;constraint:OnDelete:CASCADE"`
	Holder Profile `gorm:"foreignKey:HolderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the FractionalToken model
func (FractionalToken) TableName() string {
	return "fractional_tokens"
}
