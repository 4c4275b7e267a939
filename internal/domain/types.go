package domain

import (
	"fmt"
	"regexp"
)

// Network represents the ledger network identifier using CAIP-2 style tags
type Network string

const (
	// NetworkHederaTestnet represents the Hedera testnet
	NetworkHederaTestnet Network = "hedera:testnet"
	// NetworkHederaMainnet represents the Hedera mainnet
	NetworkHederaMainnet Network = "hedera:mainnet"
)

// IsValidNetwork checks if a network tag is valid
func IsValidNetwork(network Network) bool {
	return network == NetworkHederaTestnet || network == NetworkHederaMainnet
}

const (
	// MinShareCount is the smallest allowed fractional supply
	MinShareCount = 2
	// MaxShareCount is the largest allowed fractional supply
	MaxShareCount = 10000
)

// ValidShareCount checks if a requested fractional supply is within the allowed range
func ValidShareCount(shareCount int) bool {
	return shareCount >= MinShareCount && shareCount <= MaxShareCount
}

// SharePercentage renders the ownership percentage a single share represents,
// with four decimal places (e.g. "1.0000%" for 100 shares, "33.3333%" for 3).
// Display-only; nothing derived from it is ever stored.
func SharePercentage(shareCount int) string {
	return fmt.Sprintf("%.4f%%", 100/float64(shareCount))
}

// tokenIDRegex matches Hedera entity identifiers in shard.realm.num format
var tokenIDRegex = regexp.MustCompile(`^0\.0\.[1-9][0-9]*$`)

// TokenID represents an externally issued ledger token identifier (e.g. "0.0.123456")
type TokenID string

// Valid checks if the token ID is well-formed
func (t TokenID) Valid() bool {
	return tokenIDRegex.MatchString(string(t))
}

func (t TokenID) String() string {
	return string(t)
}

// AccountID represents a ledger account identifier, same shape as TokenID
type AccountID string

// Valid checks if the account ID is well-formed
func (a AccountID) Valid() bool {
	return tokenIDRegex.MatchString(string(a))
}

func (a AccountID) String() string {
	return string(a)
}
