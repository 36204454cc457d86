package service

import (
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
)

// Experience granted by care actions.
const (
	FeedExperience uint8 = 10
	PlayExperience uint8 = 5
)

// Repository owns the entity maps and every structural mutation on them.
//
// Every public method is total: it checks all referenced entities before
// changing anything, so a NotFound error leaves the state untouched.
// Entities returned to callers are copies.
type Repository struct {
	state  *domain.State
	clock  domain.Clock
	tokens *TokenAuthority
	ttl    time.Duration

	// rev counts changes to state. Only successful mutations bump it.
	rev uint64
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source used for timestamps and token expiry.
func WithClock(c domain.Clock) Option {
	return func(r *Repository) {
		r.clock = c
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// NewRepository creates a Repository over state. A nil state starts empty.
func NewRepository(state *domain.State, opts ...Option) *Repository {
	r := &Repository{clock: domain.SystemClock{}}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset(state)
	return r
}

// Reset replaces the whole state, for example after loading a snapshot.
func (r *Repository) Reset(state *domain.State) {
	if state == nil {
		state = domain.NewState()
	}
	state.Normalize()
	r.state = state
	r.tokens = NewTokenAuthority(state.Tokens, r.clock, r.ttl)
	r.tokens.onChange = r.touch
	r.touch()
}

// Revision returns a counter that changes whenever the state changes.
// Reads and failed operations leave it alone.
func (r *Repository) Revision() uint64 {
	return r.rev
}

func (r *Repository) touch() {
	r.rev++
}

// State exposes the live maps. Callers must hold the same guard as for
// any other repository call and must not retain the pointer.
func (r *Repository) State() *domain.State {
	return r.state
}

// Tokens returns the token authority bound to this repository's token map.
func (r *Repository) Tokens() *TokenAuthority {
	return r.tokens
}

// Now returns the repository clock's current time.
func (r *Repository) Now() time.Time {
	return r.clock.Now()
}

// Counts returns the number of entities per map.
func (r *Repository) Counts() domain.Counts {
	return r.state.Counts()
}

func (r *Repository) user(id string) (*domain.User, error) {
	u, ok := r.state.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound.WithDetails(id)
	}
	return u, nil
}

func (r *Repository) pet(id string) (*domain.Pet, error) {
	p, ok := r.state.Pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound.WithDetails(id)
	}
	return p, nil
}

func (r *Repository) yard(id string) (*domain.PetYard, error) {
	y, ok := r.state.Yards[id]
	if !ok {
		return nil, domain.ErrYardNotFound.WithDetails(id)
	}
	return y, nil
}
