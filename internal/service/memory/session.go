package memory

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const sessionIDBytes = 16

// NewSessionID returns an opaque hex token carrying 128 bits of entropy.
func NewSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
