package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// OwnershipEventType represents the kind of ownership change being announced
type OwnershipEventType string

const (
	// OwnershipEventFractionalization announces an NFT split into shares
	OwnershipEventFractionalization OwnershipEventType = "fractionalization"
	// OwnershipEventTransfer announces shares moving between holders
	OwnershipEventTransfer OwnershipEventType = "transfer"
	// OwnershipEventReversal announces a reconciled rollback
	OwnershipEventReversal OwnershipEventType = "reversal"
)

// OwnershipEvent is the normalized ownership-change notification published to
// the message broker after the transaction log entry is committed. The log
// entry stays the audit trail of record; this event is best-effort fan-out.
type OwnershipEvent struct {
	EventID         string             `json:"event_id"` // ULID, sortable by emission time
	EventType       OwnershipEventType `json:"event_type"`
	NFTID           string             `json:"nft_id"`
	FractionTokenID *string            `json:"fraction_token_id,omitempty"`
	FromUserID      *string            `json:"from_user_id,omitempty"`
	ToUserID        *string            `json:"to_user_id,omitempty"`
	Amount          int                `json:"amount"`
	TransactionHash *string            `json:"transaction_hash,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
}

// NewOwnershipEventID generates a fresh event identifier
func NewOwnershipEventID() string {
	return ulid.Make().String()
}
