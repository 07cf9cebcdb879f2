// Package keyhash folds variable-length keys down to the uint64 that
// swiss and burst index by, for callers whose natural key type is a
// byte slice or string — a burst.Registry parent symbol, say — rather
// than a pre-assigned numeric ID.
package keyhash

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Bytes folds an arbitrary-length key into a uint64 via Keccak-256,
// taking the low 8 bytes of the digest. Deterministic across runs,
// unlike Go's built-in map seed, so a given key always folds to the
// same uint64.
func Bytes(key []byte) uint64 {
	h := sha3.Sum256(key)
	return binary.LittleEndian.Uint64(h[:8])
}

// String is Bytes for a string key.
func String(key string) uint64 {
	h := sha3.Sum256([]byte(key))
	return binary.LittleEndian.Uint64(h[:8])
}
