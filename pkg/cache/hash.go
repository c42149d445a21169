package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
//
// Parts are rendered with %#v rather than JSON so non-finite floats (an
// infinite cutoff, for one) still hash to distinct, stable keys.
func hashKey(prefix string, parts ...any) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%#v", parts))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
