package service

import (
	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/pkg/credential"
)

// dummyCredential is verified against when a username is unknown so that
// both failure paths of Authenticate do the same work.
var dummyCredential = credential.New("petyard-dummy-password")

// UserPatch carries optional profile changes. Nil fields are left as is.
type UserPatch struct {
	Email    *string
	Password *string
}

// CreateUser registers a new user. Usernames are unique and compared
// case-sensitively.
func (r *Repository) CreateUser(username, email, password string) (*domain.User, error) {
	if password == "" {
		return nil, domain.ErrUserValidation.WithDetails("password is required")
	}

	u := domain.NewUser(username, email, r.clock.Now())
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if r.findByUsername(username) != nil {
		return nil, domain.ErrUsernameConflict.WithDetails("username")
	}

	cred := credential.New(password)
	u.PasswordHash = cred.Digest
	u.PasswordSalt = cred.Salt

	r.state.Users[u.ID] = u
	r.touch()
	return u.Clone(), nil
}

// Authenticate checks a username and password. An unknown username and a
// wrong password produce the same ErrUnauthorized.
func (r *Repository) Authenticate(username, password string) (*domain.User, error) {
	u := r.findByUsername(username)
	if u == nil {
		credential.Verify(password, dummyCredential.Salt, dummyCredential.Digest)
		return nil, domain.ErrUnauthorized
	}
	if !credential.Verify(password, u.PasswordSalt, u.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}
	return u.Clone(), nil
}

// Login authenticates and issues a session token.
func (r *Repository) Login(username, password string) (string, *domain.User, error) {
	u, err := r.Authenticate(username, password)
	if err != nil {
		return "", nil, err
	}
	return r.tokens.Issue(u.ID), u, nil
}

// GetUser returns a copy of the user.
func (r *Repository) GetUser(id string) (*domain.User, error) {
	u, err := r.user(id)
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// FindUserByUsername returns a copy of the user with the exact username.
func (r *Repository) FindUserByUsername(username string) (*domain.User, error) {
	u := r.findByUsername(username)
	if u == nil {
		return nil, domain.ErrUserNotFound.WithDetails(username)
	}
	return u.Clone(), nil
}

// ListUsers returns copies of every user.
func (r *Repository) ListUsers() []*domain.User {
	out := make([]*domain.User, 0, len(r.state.Users))
	for _, u := range r.state.Users {
		out = append(out, u.Clone())
	}
	return out
}

// UpdateUser applies patch. A new password always gets a new salt.
func (r *Repository) UpdateUser(id string, patch UserPatch) (*domain.User, error) {
	u, err := r.user(id)
	if err != nil {
		return nil, err
	}

	next := u.Clone()
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, domain.ErrUserValidation.WithDetails("password is required")
		}
		cred := credential.New(*patch.Password)
		next.PasswordHash = cred.Digest
		next.PasswordSalt = cred.Salt
	}

	r.state.Users[id] = next
	r.touch()
	return next.Clone(), nil
}

// DeleteUser removes a user and everything the user exclusively owns.
//
// Order: owned pets (detaching each from its yard), then owned yards
// (detaching their remaining pets and members), then joined-yard
// memberships, tokens and peer chat logs, then the user record.
func (r *Repository) DeleteUser(id string) error {
	u, err := r.user(id)
	if err != nil {
		return err
	}

	for _, petID := range u.Pets.Clone() {
		r.deletePet(petID)
	}
	for _, yardID := range u.OwnedYards.Clone() {
		r.deleteYard(yardID)
	}
	for _, yardID := range u.JoinedYards.Clone() {
		if y, ok := r.state.Yards[yardID]; ok {
			y.Members.Remove(id)
		}
	}
	for peerID := range u.ChatLogs {
		if peer, ok := r.state.Users[peerID]; ok {
			delete(peer.ChatLogs, id)
		}
	}
	r.tokens.RevokeUser(id)

	delete(r.state.Users, id)
	r.touch()
	return nil
}

func (r *Repository) findByUsername(username string) *domain.User {
	for _, u := range r.state.Users {
		if u.Username == username {
			return u
		}
	}
	return nil
}
