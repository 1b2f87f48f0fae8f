package subscription

import (
	"crypto/rand"
	"fmt"
)

const (
	tokenLength   = 25
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// generateToken produces a confirmation token: tokenLength characters drawn
// uniformly from tokenAlphabet using crypto/rand. Uniqueness is assumed from
// the size of the token space (62^25), not enforced here; the store's unique
// constraint is the backstop.
func generateToken() (string, error) {
	// Largest multiple of len(tokenAlphabet) that fits in a byte; bytes at or
	// above it are rejected to keep the distribution uniform.
	const maxAccept = 248

	out := make([]byte, 0, tokenLength)
	buf := make([]byte, 32)
	for len(out) < tokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= maxAccept {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == tokenLength {
				break
			}
		}
	}
	return string(out), nil
}
