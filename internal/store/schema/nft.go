package schema

import (
	"time"

	"github.com/fractionft/fractionft/internal/domain"
)

// NFT represents the nfts table - the primary entity for tracking registered
// NFTs and their fractionalization state.
//
// The transition to is_fractionalized = true is one-way: once set,
// total_fractions and fraction_token_id are immutable and the record can
// never be fractionalized again. The flag flip happens through a guarded
// UPDATE inside the same transaction that creates the initial holding, so
// two racing fractionalization attempts cannot both succeed.
type NFT struct {
	// ID is the internal database primary key
	ID string `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	// OwnerID references the owning profile
	OwnerID string `gorm:"column:owner_id;not null;type:uuid;index:idx_nfts_owner_created,priority:1"`
	// Name is the display name
	Name string `gorm:"column:name;not null;type:text"`
	// Description is an optional free-form description
	Description *string `gorm:"column:description;type:text"`
	// ImageURL is an optional image reference
	ImageURL *string `gorm:"column:image_url;type:text"`
	// TokenID is the externally issued ledger token identifier (e.g. "0.0.123456")
	TokenID string `gorm:"column:token_id;not null;type:text"`
	// Network identifies the ledger network the token lives on
	Network domain.Network `gorm:"column:network;not null;type:text;default:'hedera:testnet'"`
	// IsFractionalized indicates whether sole ownership has been split into shares
	IsFractionalized bool `gorm:"column:is_fractionalized;not null;default:false"`
	// TotalFractions is the fixed fractional supply (nil until fractionalized)
	TotalFractions *int `gorm:"column:total_fractions"`
	// FractionTokenID is the issued fungible share token identifier (nil until fractionalized)
	FractionTokenID *string `gorm:"column:fraction_token_id;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_nfts_owner_created,priority:2,sort:desc"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Owner        Profile           `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Holdings     []FractionalToken `gorm:"foreignKey:NFTID;constraint:OnDelete:CASCADE"`
	Transactions []Transaction     `gorm:"foreignKey:NFTID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the NFT model
func (NFT) TableName() string {
	return "nfts"
}
