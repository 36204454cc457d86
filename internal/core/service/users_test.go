package service

import (
	"errors"
	"testing"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/pkg/credential"
)

func TestRepository_CreateUser(t *testing.T) {
	r, _ := newTestRepo(t)

	u, err := r.CreateUser("alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.CreatedAt != testEpoch.UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", u.CreatedAt, testEpoch.UnixMilli())
	}
	if u.PasswordHash == "" || u.PasswordSalt == "" {
		t.Fatal("password digest and salt should be set")
	}
	if u.PasswordHash != credential.HashPassword("secret", u.PasswordSalt) {
		t.Error("PasswordHash should be digest(password ++ salt)")
	}
	if _, ok := r.State().Users[u.ID]; !ok {
		t.Error("user not stored")
	}
}

func TestRepository_CreateUser_Errors(t *testing.T) {
	r, _ := newTestRepo(t)
	mustCreateUser(t, r, "alice")

	tests := []struct {
		name     string
		username string
		password string
		want     *domain.DomainError
	}{
		{"duplicate username", "alice", "x", domain.ErrUsernameConflict},
		{"empty username", "", "x", domain.ErrUserValidation},
		{"empty password", "bob", "", domain.ErrUserValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CreateUser(tt.username, "e@example.com", tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateUser() error = %v, want %v", err, tt.want)
			}
		})
	}

	if n := len(r.State().Users); n != 1 {
		t.Errorf("failed creates left %d users, want 1", n)
	}

	// Case-sensitive uniqueness.
	if _, err := r.CreateUser("Alice", "A@example.com", "x"); err != nil {
		t.Errorf("CreateUser(Alice) error = %v, usernames are case-sensitive", err)
	}
}

func TestRepository_Authenticate(t *testing.T) {
	r, _ := newTestRepo(t)
	alice := mustCreateUser(t, r, "alice")

	got, err := r.Authenticate("alice", "secret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("Authenticate() id = %s, want %s", got.ID, alice.ID)
	}

	_, errWrong := r.Authenticate("alice", "wrong")
	_, errUnknown := r.Authenticate("nosuchuser", "secret")

	if !errors.Is(errWrong, domain.ErrUnauthorized) || !errors.Is(errUnknown, domain.ErrUnauthorized) {
		t.Fatalf("errors = %v / %v, want ErrUnauthorized for both", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("wrong password and unknown user must be indistinguishable: %q vs %q", errWrong, errUnknown)
	}
}

func TestRepository_Login(t *testing.T) {
	r, _ := newTestRepo(t)
	alice := mustCreateUser(t, r, "alice")

	tok, u, err := r.Login("alice", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.ID != alice.ID {
		t.Errorf("Login() user = %s, want %s", u.ID, alice.ID)
	}
	if !r.Tokens().Validate(tok, alice.ID) {
		t.Error("Login() token does not validate")
	}

	if _, _, err := r.Login("alice", "bad"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Login(bad) error = %v", err)
	}
	if n := len(r.State().Tokens); n != 1 {
		t.Errorf("failed login issued a token: %d tokens", n)
	}
}

func TestRepository_UpdateUser(t *testing.T) {
	r, _ := newTestRepo(t)
	alice := mustCreateUser(t, r, "alice")

	// Empty patch changes nothing.
	same, err := r.UpdateUser(alice.ID, UserPatch{})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if same.Email != alice.Email || same.PasswordSalt != alice.PasswordSalt {
		t.Error("empty patch modified the user")
	}

	updated, err := r.UpdateUser(alice.ID, UserPatch{Email: ptr("new@example.com"), Password: ptr("hunter2")})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Errorf("Email = %q", updated.Email)
	}
	if updated.PasswordSalt == alice.PasswordSalt {
		t.Error("password change should rotate the salt")
	}
	if _, err := r.Authenticate("alice", "secret"); err == nil {
		t.Error("old password still accepted")
	}
	if _, err := r.Authenticate("alice", "hunter2"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	if _, err := r.UpdateUser("missing", UserPatch{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("UpdateUser(missing) error = %v", err)
	}
}

func TestRepository_GetUserReturnsCopy(t *testing.T) {
	r, _ := newTestRepo(t)
	alice := mustCreateUser(t, r, "alice")

	u, err := r.GetUser(alice.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	u.Username = "mallory"
	u.Pets.Add("bogus")

	stored := r.State().Users[alice.ID]
	if stored.Username != "alice" || len(stored.Pets) != 0 {
		t.Error("GetUser() returned an alias of stored state")
	}
}

func TestRepository_DeleteUser_Cascade(t *testing.T) {
	r, _ := newTestRepo(t)
	alice := mustCreateUser(t, r, "alice")
	bob := mustCreateUser(t, r, "bob")

	aliceYard := mustCreateYard(t, r, alice.ID, "A")
	bobYard := mustCreateYard(t, r, bob.ID, "B")

	// Alice's pet lives in Bob's yard; Bob's pet lives in Alice's yard.
	alicePet := mustCreatePet(t, r, alice.ID, "a", bobYard.ID)
	bobPet := mustCreatePet(t, r, bob.ID, "b", aliceYard.ID)

	if _, err := r.AddMember(aliceYard.ID, bob.ID); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if _, err := r.AddMember(bobYard.ID, alice.ID); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if _, err := r.SendMessage(alice.ID, bob.ID, "blob"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	r.Tokens().Issue(alice.ID)
	assertIntegrity(t, r)

	if err := r.DeleteUser(alice.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	assertIntegrity(t, r)

	s := r.State()
	if _, ok := s.Users[alice.ID]; ok {
		t.Error("user still present")
	}
	if _, ok := s.Pets[alicePet.ID]; ok {
		t.Error("owned pet not deleted")
	}
	if _, ok := s.Yards[aliceYard.ID]; ok {
		t.Error("owned yard not deleted")
	}
	if s.Pets[bobPet.ID].HasYard() {
		t.Error("pet in deleted yard still references it")
	}
	if s.Yards[bobYard.ID].Members.Contains(alice.ID) {
		t.Error("deleted user still a member of joined yard")
	}
	if s.Yards[bobYard.ID].Pets.Contains(alicePet.ID) {
		t.Error("deleted pet still listed in other user's yard")
	}
	if s.Users[bob.ID].JoinedYards.Contains(aliceYard.ID) {
		t.Error("member still references deleted yard")
	}
	if _, ok := s.Users[bob.ID].ChatLogs[alice.ID]; ok {
		t.Error("peer chat log still references deleted user")
	}
	for _, tok := range s.Tokens {
		if tok.UserID == alice.ID {
			t.Error("deleted user's token still stored")
		}
	}

	if err := r.DeleteUser(alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("second DeleteUser() error = %v", err)
	}
}
