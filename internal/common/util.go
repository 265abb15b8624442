package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns a random hex string built from size random
// bytes (so the result is size*2 characters long). It is used for
// collision-resistant resource ids within one generation run; there is no
// cryptographic requirement beyond avoiding accidental collision.
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
