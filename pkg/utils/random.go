package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandomKey returns length random bytes, base64url-encoded.
// Used for the OAuth CSRF state token.
func GenerateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}
