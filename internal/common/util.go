package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns a hex string derived from size random bytes,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the slice contents with zeros. Used to shorten
// the lifetime of passwords in memory after they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
