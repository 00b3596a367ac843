package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashOriginKey returns a stable, log-safe identifier for an origin key so
// raw client addresses never appear in logs or storage paths.
func HashOriginKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
