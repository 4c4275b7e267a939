package issuer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// ReceiptHash derives a deterministic transaction hash from a receipt by
// hashing its JCS-canonicalized JSON encoding. Two equal receipts always
// produce the same hash regardless of field ordering.
func ReceiptHash(receipt interface{}) (string, error) {
	raw, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize receipt: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return "0x" + hex.EncodeToString(sum[:]), nil
}
