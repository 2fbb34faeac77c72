package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const tokenKeyBytes = 20

// GenerateTokenKey returns a random 40 character hex key for an opaque bearer token.
func GenerateTokenKey() (string, error) {
	buf := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
