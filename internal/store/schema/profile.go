package schema

import (
	"time"
)

// Profile represents the profiles table - one row per authenticated account.
// The primary key equals the identity provider's subject so profiles can be
// looked up straight from a verified token.
type Profile struct {
	// ID is the account identity (auth subject)
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// Email is the account email address
	Email string `gorm:"column:email;not null;uniqueIndex;type:text"`
	// Username is an optional display name
	Username *string `gorm:"column:username;type:text"`
	// WalletAddress is the optional linked wallet account (e.g. "0.0.54321")
	WalletAddress *string `gorm:"column:wallet_address;type:text"`
	// CreatedAt is the timestamp when this profile was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this profile was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	NFTs []NFT `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}
