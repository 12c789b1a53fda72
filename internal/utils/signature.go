package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SnapshotChecksum creates an HMAC-SHA256 checksum over a serialized price
// snapshot so later tampering or accidental recomputation is detectable.
func SnapshotChecksum(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySnapshotChecksum validates a snapshot checksum.
func VerifySnapshotChecksum(payload []byte, checksum, secret string) bool {
	expected := SnapshotChecksum(payload, secret)
	return hmac.Equal([]byte(checksum), []byte(expected))
}
