package security

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandomString returns a URL-safe random string of n source bytes.
func GenerateRandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
