package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// NewOpaqueToken generates a cryptographically random, URL-safe opaque
// string for one-time activation tokens.
func NewOpaqueToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}
