package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// generateKey generates a random identifier with the given prefix.
// Format: prefix_randomhex
func generateKey(prefix string, bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GeneratePricingKey generates the key linking a breakdown to its audit
// rows: pk_xxx
func GeneratePricingKey() (string, error) {
	return generateKey("pk", 16)
}

// GenerateSnapshotID generates an identifier for an order price snapshot:
// snap_xxx
func GenerateSnapshotID() (string, error) {
	return generateKey("snap", 16)
}

// GenerateOrderNumber generates a customer-facing order number: ord_xxx
func GenerateOrderNumber() (string, error) {
	return generateKey("ord", 8)
}
