package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of a charge token; it renders as 32 hex chars.
const TokenBytes = 16

// GenerateToken returns a random, fixed width, lowercase hex token.
func GenerateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
