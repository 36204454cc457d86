package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// Hash computes the SHA-256 digest of secret, lowercase hex encoded.
func Hash(secret []byte) string {
	h := sha256.Sum256(secret)
	return hex.EncodeToString(h[:])
}

// NewSalt returns a fresh random salt.
func NewSalt() string {
	return uuid.NewString()
}

// HashPassword returns the digest of password followed by salt.
func HashPassword(password, salt string) string {
	return Hash([]byte(password + salt))
}

// Verify recomputes the digest of candidate with salt and compares it to
// digest in constant time.
func Verify(candidate, salt, digest string) bool {
	actual := HashPassword(candidate, salt)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(digest)) == 1
}

// Credential is a digest and the salt it was computed with.
type Credential struct {
	Digest string
	Salt   string
}

// New salts and hashes password.
func New(password string) Credential {
	salt := NewSalt()
	return Credential{Digest: HashPassword(password, salt), Salt: salt}
}
