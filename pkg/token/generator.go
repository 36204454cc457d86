package token

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// KeyLength is the byte length of keys produced by GenerateKey.
const KeyLength = 32

// Generate returns a fresh random session token.
// crypto/rand does not fail on supported platforms, so neither does Generate.
func Generate() string {
	return uuid.NewString()
}

// GenerateBytes returns length random bytes.
func GenerateBytes(length int) ([]byte, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}

// GenerateKey returns a random 256-bit key, Base64 StdEncoding encoded.
func GenerateKey() (string, error) {
	key, err := GenerateBytes(KeyLength)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
