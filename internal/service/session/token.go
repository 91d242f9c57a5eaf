package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 16

// NewToken returns 16 random bytes encoded as unpadded URL-safe base64.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
