package schema

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionType represents the kind of ownership-affecting event
type TransactionType string

const (
	// TransactionTypeFractionalization indicates an NFT was split into shares
	TransactionTypeFractionalization TransactionType = "fractionalization"
	// TransactionTypeTransfer indicates shares moved between holders
	TransactionTypeTransfer TransactionType = "transfer"
	// TransactionTypeReversal indicates a fractionalization was rolled back by reconciliation
	TransactionTypeReversal TransactionType = "reversal"
)

// TransactionStatus represents the outcome recorded for a transaction
type TransactionStatus string

const (
	// TransactionStatusPending indicates the transaction is still settling
	TransactionStatusPending TransactionStatus = "pending"
	// TransactionStatusCompleted indicates the transaction settled successfully
	TransactionStatusCompleted TransactionStatus = "completed"
	// TransactionStatusFailed indicates the transaction failed
	TransactionStatusFailed TransactionStatus = "failed"
	// TransactionStatusReverted indicates the transaction's effects were compensated
	TransactionStatusReverted TransactionStatus = "reverted"
)

// Transaction represents the transactions table - the append-only audit trail
// of ownership-affecting events. Rows are never mutated or deleted once
// written.
type Transaction struct {
	// ID is the internal database primary key
	ID string `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	// NFTID references the NFT this event relates to
	NFTID string `gorm:"column:nft_id;not null;type:uuid;index:idx_transactions_nft_created,priority:1"`
	// FromUserID is the sending profile (nil for fractionalization)
	FromUserID *string `gorm:"column:from_user_id;type:uuid"`
	// ToUserID is the receiving profile (nil for reversals)
	ToUserID *string `gorm:"column:to_user_id;type:uuid"`
	// TransactionType identifies the kind of event (fractionalization, transfer, reversal)
	TransactionType TransactionType `gorm:"column:transaction_type;not null;type:text"`
	// Amount is the number of shares involved
	Amount *int `gorm:"column:amount"`
	// TransactionHash is the external ledger transaction reference
	TransactionHash *string `gorm:"column:transaction_hash;type:text"`
	// Status records the outcome (pending, completed, failed, reverted)
	Status TransactionStatus `gorm:"column:status;not null;type:text;default:'pending'"`
	// Raw contains the issuance receipt or event payload as JSON for auditing
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb"`
	// CreatedAt is the timestamp when this entry was appended
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_transactions_nft_created,priority:2,sort:desc"`

	// Associations
	NFT      NFT      `gorm:"foreignKey:NFTID;constraint:OnDelete:CASCADE"`
	FromUser *Profile `gorm:"foreignKey:FromUserID"`
	ToUser   *Profile `gorm:"foreignKey:ToUserID"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
