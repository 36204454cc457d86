package adaptive

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Seal JSON-encodes v, encrypts it with c and returns the result as
// URL-safe base64 text.
func Seal(c Cipher, v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("adaptive: encode payload: %w", err)
	}
	ct, err := c.Encrypt(plaintext, nil)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(ct), nil
}

// Open decodes and decrypts a blob produced by Seal into v.
// Bad encoding, short input and authentication failure all yield ErrDecrypt.
func Open(c Cipher, blob string, v any) error {
	ct, err := base64.URLEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("%w: bad encoding", ErrDecrypt)
	}
	plaintext, err := c.Decrypt(ct, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrDecrypt, err)
	}
	return nil
}
