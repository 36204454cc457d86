package snapshot

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// Encryption errors.
var (
	ErrPassphraseTooWeak  = errors.New("snapshot: passphrase too weak (minimum 8 characters)")
	ErrPassphraseRequired = errors.New("snapshot: snapshot is encrypted and no passphrase is configured")
	ErrDecryptionFailed   = errors.New("snapshot: decryption failed - wrong passphrase or corrupted data")
)

const (
	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the salt length used in key derivation.
	SaltLength = 16

	// Argon2id parameters.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// snapshotKeyInfo separates the snapshot key from other keys derived from
// the same passphrase.
const snapshotKeyInfo = "petyard/snapshot/v1"

// ValidatePassphrase checks the minimum strength of a passphrase.
// An empty passphrase means encryption is off and is valid.
func ValidatePassphrase(passphrase []byte) error {
	if len(passphrase) > 0 && len(passphrase) < MinPassphraseLength {
		return ErrPassphraseTooWeak
	}
	return nil
}

// NewSalt returns SaltLength random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("snapshot: generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches passphrase with Argon2id and then expands the
// result with HKDF-SHA256 under info, yielding an adaptive.KeySize key.
// The same passphrase, salt and info always produce the same key.
func DeriveKey(passphrase, salt []byte, info string) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("snapshot: empty passphrase")
	}
	if len(salt) < SaltLength {
		return nil, fmt.Errorf("snapshot: salt must be at least %d bytes", SaltLength)
	}

	master := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, adaptive.KeySize)
	defer ZeroKey(master)

	return DeriveSubkey(master, info, adaptive.KeySize)
}

// DeriveSubkey derives a subkey from a master key using HKDF.
func DeriveSubkey(masterKey []byte, info string, length int) ([]byte, error) {
	if len(masterKey) < adaptive.KeySize/2 {
		return nil, errors.New("snapshot: master key too short")
	}

	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	key := make([]byte, length)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("snapshot: derive subkey: %w", err)
	}
	return key, nil
}

// newCipher derives the snapshot key for salt and builds the AEAD.
func newCipher(passphrase, salt []byte, cipherType adaptive.CipherType) (adaptive.Cipher, error) {
	key, err := DeriveKey(passphrase, salt, snapshotKeyInfo)
	if err != nil {
		return nil, err
	}
	defer ZeroKey(key)

	return adaptive.NewWithType(key, cipherType)
}

// ZeroKey overwrites a key in memory.
func ZeroKey(key []byte) {
	clear(key)
}
