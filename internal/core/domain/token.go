package domain

import "time"

// DefaultTokenTTL is the lifetime of a freshly issued or refreshed token.
const DefaultTokenTTL = 24 * time.Hour

// UserToken is an opaque session token bound to a user.
// The binding lives only here; the token string carries no claims.
type UserToken struct {
	// UserID is the id of the user the token was issued to.
	UserID string `json:"user_id"`

	// Token is the random token string and the lookup key.
	Token string `json:"token"`

	// IssuedAt and ExpiresAt are Unix milliseconds.
	IssuedAt  int64 `json:"issued_at"`
	ExpiresAt int64 `json:"expires_at"`
}

// IsValid reports whether the token has not yet expired at now.
func (t *UserToken) IsValid(now time.Time) bool {
	return t.ExpiresAt > now.UnixMilli()
}

// ExpiresAtTime returns ExpiresAt as time.Time.
func (t *UserToken) ExpiresAtTime() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// TokenTable indexes tokens by token string.
type TokenTable map[string]*UserToken

// Lookup returns the token stored under value.
func (tt TokenTable) Lookup(value string) (*UserToken, bool) {
	t, ok := tt[value]
	return t, ok
}

// Put stores t under its token string, replacing any previous entry.
func (tt TokenTable) Put(t *UserToken) {
	tt[t.Token] = t
}

// Delete removes the token stored under value. Reports whether it existed.
func (tt TokenTable) Delete(value string) bool {
	if _, ok := tt[value]; !ok {
		return false
	}
	delete(tt, value)
	return true
}
