// Package credential implements salted password digests.
//
// A stored credential is a pair (digest, salt) where
// digest = hex(SHA-256(password ++ salt)). The salt is random UUID text
// and is replaced whenever the password changes. Verification compares
// digests in constant time.
package credential
