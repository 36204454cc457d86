package domain

import (
	"strings"
	"time"
)

// User constraints.
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 254
)

// User is an account record.
type User struct {
	// ID is the canonical UUID of the user.
	ID string `json:"id"`

	// CreatedAt is the signup timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// Username is unique across all users, compared case-sensitively.
	Username string `json:"username"`

	Email string `json:"email"`

	// PasswordHash is the hex digest of password ++ PasswordSalt.
	PasswordHash string `json:"password_hash"`

	// PasswordSalt is regenerated on every password change.
	PasswordSalt string `json:"password_salt"`

	// Pets lists the ids of pets this user owns.
	Pets IDSet `json:"pets"`

	// OwnedYards lists the ids of yards this user owns.
	OwnedYards IDSet `json:"owned_yards"`

	// JoinedYards lists the ids of yards this user was added to as a member.
	JoinedYards IDSet `json:"joined_yards"`

	// ChatLogs maps a peer user id to the conversation with that peer.
	ChatLogs map[string][]DirectMessage `json:"chat_logs"`
}

// NewUser creates a User with a generated id and empty relation sets.
// The caller fills in the password digest and salt.
func NewUser(username, email string, now time.Time) *User {
	return &User{
		ID:          NewID(),
		CreatedAt:   now.UnixMilli(),
		Username:    username,
		Email:       email,
		Pets:        IDSet{},
		OwnedYards:  IDSet{},
		JoinedYards: IDSet{},
		ChatLogs:    make(map[string][]DirectMessage),
	}
}

// Validate checks the user-editable fields.
func (u *User) Validate() error {
	var violations []string

	if u.Username == "" {
		violations = append(violations, "username is required")
	}
	if len(u.Username) > MaxUsernameLength {
		violations = append(violations, "username exceeds 64 characters")
	}
	if len(u.Email) > MaxEmailLength {
		violations = append(violations, "email exceeds 254 characters")
	}

	if len(violations) > 0 {
		return ErrUserValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// Clone creates a deep copy of the user.
func (u *User) Clone() *User {
	clone := *u
	clone.Pets = u.Pets.Clone()
	clone.OwnedYards = u.OwnedYards.Clone()
	clone.JoinedYards = u.JoinedYards.Clone()
	clone.ChatLogs = make(map[string][]DirectMessage, len(u.ChatLogs))
	for peer, msgs := range u.ChatLogs {
		clone.ChatLogs[peer] = append([]DirectMessage(nil), msgs...)
	}
	return &clone
}

// CreatedAtTime returns CreatedAt as time.Time.
func (u *User) CreatedAtTime() time.Time {
	return time.UnixMilli(u.CreatedAt)
}

// PublicUser is the view of a user served without authentication.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	CreatedAt   int64  `json:"created_at"`
	Pets        IDSet  `json:"pets"`
	OwnedYards  IDSet  `json:"owned_yards"`
	JoinedYards IDSet  `json:"joined_yards"`
}

// Public strips credentials, email and chat logs.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt,
		Pets:        u.Pets.Clone(),
		OwnedYards:  u.OwnedYards.Clone(),
		JoinedYards: u.JoinedYards.Clone(),
	}
}

// Profile is the owner's own view: everything but the credential fields.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	CreatedAt   int64  `json:"created_at"`
	Pets        IDSet  `json:"pets"`
	OwnedYards  IDSet  `json:"owned_yards"`
	JoinedYards IDSet  `json:"joined_yards"`
}

// Profile returns the owner's view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		Pets:        u.Pets.Clone(),
		OwnedYards:  u.OwnedYards.Clone(),
		JoinedYards: u.JoinedYards.Clone(),
	}
}
