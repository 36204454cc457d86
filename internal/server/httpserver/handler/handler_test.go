package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/storage/snapshot"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	clock  *domain.ManualClock
	engine *storage.Engine
	mux    *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend, err := snapshot.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	clock := domain.NewManualClock(testEpoch)
	store, err := snapshot.NewStore(snapshot.Options{Backend: backend, Clock: clock})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := storage.DefaultConfig()
	cfg.SweepEnabled = false
	cfg.Logger = logger
	engine, err := storage.New(service.NewRepository(nil, service.WithClock(clock)), store, cfg)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if err := engine.Recover(context.Background()); err != nil {
		t.Fatalf("Recover: %v", err)
	}

	cipher, err := adaptive.NewWithType(bytes.Repeat([]byte{7}, adaptive.KeySize), adaptive.CipherAESGCM)
	if err != nil {
		t.Fatalf("NewWithType: %v", err)
	}

	h := New(Config{Engine: engine, Cipher: cipher, Logger: logger})
	return &testEnv{clock: clock, engine: engine, mux: h.Mux()}
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details any             `json:"details"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, env
}

func (e *testEnv) expect(t *testing.T, method, path string, body any, status int) envelope {
	t.Helper()
	rec, env := e.do(t, method, path, body)
	if rec.Code != status {
		t.Fatalf("%s %s: status = %d, want %d (code %s, details %v)", method, path, rec.Code, status, env.Code, env.Details)
	}
	return env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func (e *testEnv) signup(t *testing.T, username string) domain.Profile {
	t.Helper()
	env := e.expect(t, "POST", "/auth/signup", SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-" + username,
	}, http.StatusCreated)
	return decodeData[domain.Profile](t, env)
}

func (e *testEnv) createPet(t *testing.T, userID, name string) PetResponse {
	t.Helper()
	env := e.expect(t, "POST", "/users/"+userID+"/pets/new", CreatePetRequest{Name: name, Species: "cat"}, http.StatusCreated)
	return decodeData[PetResponse](t, env)
}

func (e *testEnv) createYard(t *testing.T, userID, name string) domain.PetYard {
	t.Helper()
	env := e.expect(t, "POST", "/users/"+userID+"/pet_yards/new", CreateYardRequest{Name: name}, http.StatusCreated)
	return decodeData[domain.PetYard](t, env)
}

func TestSignupAndLogin(t *testing.T) {
	e := newTestEnv(t)

	alice := e.signup(t, "alice")
	if !domain.IsValidID(alice.ID) || alice.Username != "alice" {
		t.Fatalf("signup profile = %+v", alice)
	}

	env := e.expect(t, "POST", "/auth/signup", SignupRequest{Username: "alice", Password: "x"}, http.StatusConflict)
	if env.Code != domain.ErrUsernameConflict.Code {
		t.Errorf("code = %s", env.Code)
	}

	env = e.expect(t, "POST", "/auth/login", LoginRequest{Username: "alice", Password: "secret-alice"}, http.StatusOK)
	login := decodeData[LoginResponse](t, env)
	if login.UserID != alice.ID || login.Token == "" {
		t.Errorf("login = %+v", login)
	}
	if want := testEpoch.Add(domain.DefaultTokenTTL); !login.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", login.ExpiresAt, want)
	}

	wrongPass := e.expect(t, "POST", "/auth/login", LoginRequest{Username: "alice", Password: "nope"}, http.StatusUnauthorized)
	unknown := e.expect(t, "POST", "/auth/login", LoginRequest{Username: "bob", Password: "nope"}, http.StatusUnauthorized)
	if wrongPass.Code != unknown.Code || wrongPass.Message != unknown.Message {
		t.Error("unknown user and wrong password should be indistinguishable")
	}
}

func TestSignup_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"empty body", nil, http.StatusBadRequest},
		{"malformed json", "{", http.StatusBadRequest},
		{"missing password", SignupRequest{Username: "alice"}, http.StatusBadRequest},
		{"missing username", SignupRequest{Password: "pw"}, http.StatusBadRequest},
		{"bad email", SignupRequest{Username: "alice", Email: "not-an-email", Password: "pw"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.expect(t, "POST", "/auth/signup", tt.body, tt.status)
		})
	}
	if got := e.engine.Counts().Users; got != 0 {
		t.Errorf("Users = %d, want 0", got)
	}
}

func TestTokenLifecycle(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	env := e.expect(t, "POST", "/auth/login", LoginRequest{Username: "alice", Password: "secret-alice"}, http.StatusOK)
	tok := decodeData[LoginResponse](t, env).Token

	e.expect(t, "GET", "/auth/verify/"+alice.ID+"/"+tok, nil, http.StatusOK)
	e.expect(t, "GET", "/auth/verify/"+bob.ID+"/"+tok, nil, http.StatusUnauthorized)

	e.clock.Advance(23 * time.Hour)
	env = e.expect(t, "POST", "/auth/refresh_token/"+alice.ID+"/"+tok, nil, http.StatusOK)
	refreshed := decodeData[TokenResponse](t, env)
	if want := testEpoch.Add(23*time.Hour + domain.DefaultTokenTTL); refreshed.ExpiresAt == nil || !refreshed.ExpiresAt.Equal(want) {
		t.Errorf("refreshed ExpiresAt = %v, want %v", refreshed.ExpiresAt, want)
	}

	e.clock.Advance(2 * time.Hour)
	e.expect(t, "GET", "/auth/verify/"+alice.ID+"/"+tok, nil, http.StatusOK)

	e.expect(t, "POST", "/auth/logout/"+bob.ID+"/"+tok, nil, http.StatusUnauthorized)
	e.expect(t, "POST", "/auth/logout/"+alice.ID+"/"+tok, nil, http.StatusOK)
	e.expect(t, "POST", "/auth/logout/"+alice.ID+"/"+tok, nil, http.StatusUnauthorized)
	e.expect(t, "GET", "/auth/verify/"+alice.ID+"/"+tok, nil, http.StatusUnauthorized)
	e.expect(t, "POST", "/auth/refresh_token/"+alice.ID+"/"+tok, nil, http.StatusUnauthorized)
}

func TestUsers(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")

	env := e.expect(t, "GET", "/users/"+alice.ID, nil, http.StatusOK)
	if got := decodeData[map[string]any](t, env); got["password_hash"] != nil || got["email"] != "alice@example.com" {
		t.Errorf("profile = %v", got)
	}

	env = e.expect(t, "PATCH", "/users/"+alice.ID, map[string]string{"email": "new@example.com", "password": "rotated"}, http.StatusOK)
	if got := decodeData[domain.Profile](t, env); got.Email != "new@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	e.expect(t, "POST", "/auth/login", LoginRequest{Username: "alice", Password: "secret-alice"}, http.StatusUnauthorized)
	e.expect(t, "POST", "/auth/login", LoginRequest{Username: "alice", Password: "rotated"}, http.StatusOK)

	e.expect(t, "PATCH", "/users/"+alice.ID, map[string]string{"email": "bad"}, http.StatusBadRequest)

	e.createPet(t, alice.ID, "tom")
	e.expect(t, "DELETE", "/users/"+alice.ID, nil, http.StatusOK)
	e.expect(t, "GET", "/users/"+alice.ID, nil, http.StatusNotFound)

	if got := e.engine.Counts(); got != (domain.Counts{}) {
		t.Errorf("Counts() after delete = %+v, want empty", got)
	}
}

func TestPets(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	pet := e.createPet(t, alice.ID, "tom")
	if pet.Level != 1 || pet.Owner != alice.ID || pet.Hunger != domain.HungerSatiated {
		t.Fatalf("pet = %+v", pet)
	}
	path := "/users/" + alice.ID + "/pets/" + pet.ID

	e.expect(t, "GET", path, nil, http.StatusOK)
	e.expect(t, "GET", "/users/"+bob.ID+"/pets/"+pet.ID, nil, http.StatusForbidden)
	e.expect(t, "GET", "/users/"+alice.ID+"/pets/"+domain.NewID(), nil, http.StatusNotFound)

	for i := 0; i < 10; i++ {
		e.expect(t, "POST", path+"/feed", nil, http.StatusOK)
	}
	env := e.expect(t, "GET", path, nil, http.StatusOK)
	if got := decodeData[PetResponse](t, env); got.Level != 2 || got.Experience != 0 {
		t.Errorf("after 10 feeds level=%d xp=%d, want 2/0", got.Level, got.Experience)
	}

	env = e.expect(t, "POST", path+"/play", nil, http.StatusOK)
	if got := decodeData[PetResponse](t, env); got.Experience != service.PlayExperience {
		t.Errorf("xp after play = %d", got.Experience)
	}
	e.expect(t, "POST", "/users/"+bob.ID+"/pets/"+pet.ID+"/feed", nil, http.StatusForbidden)

	env = e.expect(t, "PATCH", path, map[string]string{"name": "thomas"}, http.StatusOK)
	if got := decodeData[PetResponse](t, env); got.Name != "thomas" || got.Species != "cat" {
		t.Errorf("patched pet = %+v", got)
	}
	e.expect(t, "PATCH", path, map[string]string{"name": ""}, http.StatusBadRequest)
	e.expect(t, "PATCH", "/users/"+bob.ID+"/pets/"+pet.ID, map[string]string{"name": "x"}, http.StatusForbidden)

	e.expect(t, "DELETE", "/users/"+bob.ID+"/pets/"+pet.ID, nil, http.StatusForbidden)
	e.expect(t, "DELETE", path, nil, http.StatusOK)
	e.expect(t, "GET", path, nil, http.StatusNotFound)
}

func TestPets_YardPlacement(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	aliceYard := e.createYard(t, alice.ID, "garden")
	bobYard := e.createYard(t, bob.ID, "porch")

	e.expect(t, "POST", "/users/"+alice.ID+"/pets/new",
		CreatePetRequest{Name: "tom", Species: "cat", PetYard: bobYard.ID}, http.StatusForbidden)

	env := e.expect(t, "POST", "/users/"+alice.ID+"/pets/new",
		CreatePetRequest{Name: "tom", Species: "cat", PetYard: aliceYard.ID}, http.StatusCreated)
	pet := decodeData[PetResponse](t, env)
	if pet.Yard != aliceYard.ID {
		t.Fatalf("Yard = %q, want %q", pet.Yard, aliceYard.ID)
	}
	path := "/users/" + alice.ID + "/pets/" + pet.ID

	e.expect(t, "PATCH", path, map[string]string{"pet_yard": bobYard.ID}, http.StatusForbidden)

	env = e.expect(t, "PATCH", path, map[string]string{"pet_yard": ""}, http.StatusOK)
	if got := decodeData[PetResponse](t, env); got.Yard != "" {
		t.Errorf("Yard after detach = %q", got.Yard)
	}
	env = e.expect(t, "GET", "/public/pet_yard/"+aliceYard.ID, nil, http.StatusOK)
	if got := decodeData[domain.PublicYard](t, env); len(got.Pets) != 0 {
		t.Errorf("yard pets after detach = %v", got.Pets)
	}
}

func TestYards(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	carol := e.signup(t, "carol")

	yard := e.createYard(t, alice.ID, "garden")
	base := "/users/" + alice.ID + "/pet_yards/" + yard.ID
	bobView := "/users/" + bob.ID + "/pet_yards/" + yard.ID

	e.expect(t, "GET", bobView, nil, http.StatusForbidden)
	e.expect(t, "PATCH", bobView+"/member/"+bob.ID, nil, http.StatusForbidden)

	env := e.expect(t, "PATCH", base+"/member/"+bob.ID, nil, http.StatusOK)
	if got := decodeData[domain.PetYard](t, env); !got.Members.Contains(bob.ID) {
		t.Errorf("members = %v", got.Members)
	}
	e.expect(t, "GET", bobView, nil, http.StatusOK)
	e.expect(t, "PATCH", bobView, map[string]string{"name": "mine"}, http.StatusForbidden)
	e.expect(t, "PATCH", base+"/member/"+domain.NewID(), nil, http.StatusNotFound)

	bobPet := e.createPet(t, bob.ID, "rex")
	alicePet := e.createPet(t, alice.ID, "tom")
	e.expect(t, "PATCH", base+"/pet/"+bobPet.ID, nil, http.StatusForbidden)
	env = e.expect(t, "PATCH", base+"/pet/"+alicePet.ID, nil, http.StatusOK)
	if got := decodeData[domain.PetYard](t, env); !got.Pets.Contains(alicePet.ID) {
		t.Errorf("pets = %v", got.Pets)
	}

	env = e.expect(t, "PATCH", base, map[string]string{"name": "orchard"}, http.StatusOK)
	if got := decodeData[domain.PetYard](t, env); got.Name != "orchard" {
		t.Errorf("Name = %q", got.Name)
	}

	e.expect(t, "DELETE", base+"/member/"+bob.ID, nil, http.StatusOK)
	e.expect(t, "GET", bobView, nil, http.StatusForbidden)
	e.expect(t, "DELETE", base+"/member/"+carol.ID, nil, http.StatusOK)

	e.expect(t, "DELETE", base+"/pet/"+alicePet.ID, nil, http.StatusOK)
	e.expect(t, "PATCH", base+"/pet/"+alicePet.ID, nil, http.StatusOK)

	e.expect(t, "DELETE", bobView, nil, http.StatusForbidden)
	e.expect(t, "DELETE", base, nil, http.StatusOK)
	e.expect(t, "GET", base, nil, http.StatusNotFound)

	env = e.expect(t, "GET", "/users/"+alice.ID+"/pets/"+alicePet.ID, nil, http.StatusOK)
	if got := decodeData[PetResponse](t, env); got.Yard != "" {
		t.Errorf("pet still points at deleted yard %q", got.Yard)
	}
}

func TestMessages(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	env := e.expect(t, "POST", "/users/"+alice.ID+"/messages/"+bob.ID, SendMessageRequest{Message: "hello bob"}, http.StatusCreated)
	sent := decodeData[MessageResponse](t, env)
	if sent.Payload == "" || sent.Payload == "hello bob" || sent.Text != nil {
		t.Errorf("sent = %+v", sent)
	}
	e.expect(t, "POST", "/users/"+bob.ID+"/messages/"+alice.ID, SendMessageRequest{Message: "hi alice"}, http.StatusCreated)

	env = e.expect(t, "GET", "/users/"+bob.ID+"/messages/"+alice.ID+"?decrypt=true", nil, http.StatusOK)
	msgs := decodeData[[]MessageResponse](t, env)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Text == nil || *msgs[0].Text != "hello bob" || msgs[0].Sender != alice.ID {
		t.Errorf("messages[0] = %+v", msgs[0])
	}
	if msgs[1].Text == nil || *msgs[1].Text != "hi alice" {
		t.Errorf("messages[1] = %+v", msgs[1])
	}

	env = e.expect(t, "GET", "/users/"+alice.ID+"/messages/"+bob.ID, nil, http.StatusOK)
	if got := decodeData[[]MessageResponse](t, env); len(got) != 2 || got[0].Text != nil {
		t.Errorf("sealed read = %+v", got)
	}

	e.expect(t, "POST", "/users/"+alice.ID+"/messages/"+alice.ID, SendMessageRequest{Message: "me"}, http.StatusBadRequest)
	e.expect(t, "POST", "/users/"+alice.ID+"/messages/"+domain.NewID(), SendMessageRequest{Message: "x"}, http.StatusNotFound)

	err := e.engine.Update(context.Background(), func(repo *service.Repository) error {
		repo.State().Users[alice.ID].ChatLogs[bob.ID][0].Payload = "AAAA"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	env = e.expect(t, "GET", "/users/"+alice.ID+"/messages/"+bob.ID+"?decrypt=true", nil, http.StatusUnprocessableEntity)
	if env.Code != domain.ErrDecrypt.Code {
		t.Errorf("code = %s", env.Code)
	}
}

func TestPublicViews(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup(t, "alice")
	pet := e.createPet(t, alice.ID, "tom")
	yard := e.createYard(t, alice.ID, "garden")

	env := e.expect(t, "GET", "/public/user/"+alice.ID, nil, http.StatusOK)
	user := decodeData[map[string]any](t, env)
	for _, hidden := range []string{"email", "password_hash", "password_salt", "chat_logs"} {
		if _, ok := user[hidden]; ok {
			t.Errorf("public user exposes %s", hidden)
		}
	}

	e.clock.Advance(50 * time.Hour)
	env = e.expect(t, "GET", "/public/pet/"+pet.ID, nil, http.StatusOK)
	if got := decodeData[domain.PublicPet](t, env); got.Hunger != domain.HungerStarving || got.Mood != domain.MoodDepressed {
		t.Errorf("public pet = %+v", got)
	}

	e.expect(t, "GET", "/public/pet_yard/"+yard.ID, nil, http.StatusOK)

	for _, path := range []string{"/public/user/", "/public/pet/", "/public/pet_yard/"} {
		e.expect(t, "GET", path+domain.NewID(), nil, http.StatusNotFound)
	}
}

func TestHealthAndReady(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "alice")

	e.expect(t, "GET", "/health", nil, http.StatusOK)
	env := e.expect(t, "GET", "/ready", nil, http.StatusOK)
	got := decodeData[struct {
		Counts domain.Counts `json:"counts"`
	}](t, env)
	if got.Counts.Users != 1 {
		t.Errorf("ready counts = %+v", got.Counts)
	}

	if err := e.engine.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	e.expect(t, "GET", "/ready", nil, http.StatusServiceUnavailable)
	env = e.expect(t, "GET", "/public/user/"+domain.NewID(), nil, http.StatusServiceUnavailable)
	if env.Code != domain.ErrServiceUnavailable.Code {
		t.Errorf("code = %s", env.Code)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.ErrUserNotFound.Code, http.StatusNotFound},
		{domain.ErrUsernameConflict.Code, http.StatusConflict},
		{domain.ErrUserValidation.Code, http.StatusBadRequest},
		{domain.ErrBadRequest.Code, http.StatusBadRequest},
		{domain.ErrUnauthorized.Code, http.StatusUnauthorized},
		{domain.ErrTokenInvalid.Code, http.StatusUnauthorized},
		{domain.ErrForbidden.Code, http.StatusForbidden},
		{domain.ErrDecrypt.Code, http.StatusUnprocessableEntity},
		{domain.ErrRateLimited.Code, http.StatusTooManyRequests},
		{domain.ErrInvalidArgument.Code, http.StatusBadRequest},
		{domain.ErrMissingArgument.Code, http.StatusBadRequest},
		{domain.ErrServiceUnavailable.Code, http.StatusServiceUnavailable},
		{domain.ErrInternalServer.Code, http.StatusInternalServerError},
		{"PY-X-9999", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("errorCodeToHTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
