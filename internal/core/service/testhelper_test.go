package service

import (
	"testing"
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repository, *domain.ManualClock) {
	t.Helper()
	clock := domain.NewManualClock(testEpoch)
	return NewRepository(nil, WithClock(clock)), clock
}

func mustCreateUser(t *testing.T, r *Repository, name string) *domain.User {
	t.Helper()
	u, err := r.CreateUser(name, name+"@example.com", "secret")
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", name, err)
	}
	return u
}

func mustCreateYard(t *testing.T, r *Repository, owner, name string) *domain.PetYard {
	t.Helper()
	y, err := r.CreateYard(owner, name, 0)
	if err != nil {
		t.Fatalf("CreateYard(%q) error = %v", name, err)
	}
	return y
}

func mustCreatePet(t *testing.T, r *Repository, owner, name, yard string) *domain.Pet {
	t.Helper()
	p, err := r.CreatePet(owner, name, "dog", 0, yard)
	if err != nil {
		t.Fatalf("CreatePet(%q) error = %v", name, err)
	}
	return p
}

func assertIntegrity(t *testing.T, r *Repository) {
	t.Helper()
	if err := r.CheckIntegrity(); err != nil {
		t.Fatalf("CheckIntegrity() = %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
