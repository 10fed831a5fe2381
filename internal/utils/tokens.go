package utils

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// GenerateSecureToken creates a cryptographically secure random token of
// length random bytes, hex encoded. Invitation and magic-link tokens use 32
// bytes (256 bits).
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
