package service

import (
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/pkg/token"
)

// TokenAuthority issues and checks opaque session tokens.
// The token table is the only record of which user a token belongs to.
type TokenAuthority struct {
	table domain.TokenTable
	clock domain.Clock
	ttl   time.Duration

	// onChange, if set, runs after every change to table.
	onChange func()
}

// NewTokenAuthority creates a TokenAuthority over table.
// A non-positive ttl selects domain.DefaultTokenTTL.
func NewTokenAuthority(table domain.TokenTable, clock domain.Clock, ttl time.Duration) *TokenAuthority {
	if ttl <= 0 {
		ttl = domain.DefaultTokenTTL
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &TokenAuthority{table: table, clock: clock, ttl: ttl}
}

// TTL returns the lifetime given to issued and refreshed tokens.
func (a *TokenAuthority) TTL() time.Duration {
	return a.ttl
}

// Issue creates and registers a new token for userID.
func (a *TokenAuthority) Issue(userID string) string {
	now := a.clock.Now()
	t := &domain.UserToken{
		UserID:    userID,
		Token:     token.Generate(),
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(a.ttl).UnixMilli(),
	}
	a.table.Put(t)
	a.changed()
	return t.Token
}

// Validate reports whether value is a live token issued to userID.
// Unknown tokens fail closed.
func (a *TokenAuthority) Validate(value, userID string) bool {
	t, ok := a.table.Lookup(value)
	if !ok {
		return false
	}
	return t.IsValid(a.clock.Now()) && t.UserID == userID
}

// Lookup returns a copy of the stored token, expired or not.
func (a *TokenAuthority) Lookup(value string) (domain.UserToken, bool) {
	t, ok := a.table.Lookup(value)
	if !ok {
		return domain.UserToken{}, false
	}
	return *t, true
}

// Refresh extends a known token to expire TTL from now.
// Knowing the token string is sufficient.
func (a *TokenAuthority) Refresh(value string) bool {
	t, ok := a.table.Lookup(value)
	if !ok {
		return false
	}
	t.ExpiresAt = a.clock.Now().Add(a.ttl).UnixMilli()
	a.changed()
	return true
}

// Revoke removes a token. Reports whether it was present.
func (a *TokenAuthority) Revoke(value string) bool {
	if !a.table.Delete(value) {
		return false
	}
	a.changed()
	return true
}

// RevokeUser removes every token issued to userID and returns how many.
func (a *TokenAuthority) RevokeUser(userID string) int {
	n := 0
	for value, t := range a.table {
		if t.UserID == userID {
			delete(a.table, value)
			n++
		}
	}
	if n > 0 {
		a.changed()
	}
	return n
}

// PurgeExpired removes tokens that are no longer valid and returns how
// many were dropped. Request paths never call this; expired tokens are
// simply rejected on lookup.
func (a *TokenAuthority) PurgeExpired() int {
	now := a.clock.Now()
	n := 0
	for value, t := range a.table {
		if !t.IsValid(now) {
			delete(a.table, value)
			n++
		}
	}
	if n > 0 {
		a.changed()
	}
	return n
}

func (a *TokenAuthority) changed() {
	if a.onChange != nil {
		a.onChange()
	}
}
