package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShareCount is returned when a fractional supply is outside [MinShareCount, MaxShareCount]
	ErrInvalidShareCount = fmt.Errorf("share count must be between %d and %d", MinShareCount, MaxShareCount)

	// ErrAlreadyFractionalized is returned when attempting to fractionalize an NFT a second time
	ErrAlreadyFractionalized = errors.New("nft is already fractionalized")

	// ErrNotFractionalized is returned when a share operation targets an NFT that was never fractionalized
	ErrNotFractionalized = errors.New("nft is not fractionalized")

	// ErrNotOwner is returned when the acting user does not own the NFT
	ErrNotOwner = errors.New("acting user is not the nft owner")

	// ErrNFTNotFound is returned when an NFT record does not exist
	ErrNFTNotFound = errors.New("nft not found")

	// ErrProfileNotFound is returned when a profile record does not exist
	ErrProfileNotFound = errors.New("profile not found")

	// ErrHoldingNotFound is returned when the sender holds no shares of the NFT
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrInsufficientShares is returned when a transfer exceeds the sender's share balance
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrSelfTransfer is returned when sender and recipient are the same profile
	ErrSelfTransfer = errors.New("cannot transfer shares to self")

	// ErrInvalidAmount is returned when a transfer amount is not positive
	ErrInvalidAmount = errors.New("transfer amount must be positive")

	// ErrExtensionNotFound is returned when no wallet extension is installed
	ErrExtensionNotFound = errors.New("wallet extension not found")

	// ErrWalletNotConnected is returned when a wallet operation requires a connected session
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrNotImplemented is returned by boundary operations that have no real implementation yet
	ErrNotImplemented = errors.New("not implemented")
)

// PartialFailureError reports a fractionalization that committed some external
// effect before a later step failed. It is surfaced instead of silently
// succeeding or silently losing work; the sweeper reconciles the leftovers.
type PartialFailureError struct {
	// Stage is the step that failed after earlier steps committed
	Stage string
	// Cause is the failure at Stage
	Cause error
	// CompensationErr is non-nil when the compensating action also failed
	CompensationErr error
}

func (e *PartialFailureError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("partial failure at %s: %v (compensation failed: %v)", e.Stage, e.Cause, e.CompensationErr)
	}
	return fmt.Sprintf("partial failure at %s: %v", e.Stage, e.Cause)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Cause
}
