package benchmark

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
)

// UserCounts defines the state sizes for benchmarking. Each user owns
// petsPerUser pets and one yard.
var UserCounts = []int{100, 1000, 10000}

const (
	petsPerUser = 3
	benchPass   = "hunter22"
)

var benchEpoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// population is a prefilled repository and the ids and tokens it holds.
type population struct {
	repo   *service.Repository
	clock  *domain.ManualClock
	users  []string
	pets   []string
	tokens []string
}

// populate creates count users, each with a yard, petsPerUser pets and a
// token.
func populate(b *testing.B, count int) *population {
	b.Helper()

	clock := domain.NewManualClock(benchEpoch)
	repo := service.NewRepository(nil, service.WithClock(clock))
	p := &population{repo: repo, clock: clock}

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("user%06d", i)
		u, err := repo.CreateUser(name, name+"@example.com", benchPass)
		if err != nil {
			b.Fatalf("create user: %v", err)
		}
		y, err := repo.CreateYard(u.ID, name+" yard", uint64(i))
		if err != nil {
			b.Fatalf("create yard: %v", err)
		}
		for j := 0; j < petsPerUser; j++ {
			pet, err := repo.CreatePet(u.ID, fmt.Sprintf("pet%d", j), "cat", uint64(j), y.ID)
			if err != nil {
				b.Fatalf("create pet: %v", err)
			}
			p.pets = append(p.pets, pet.ID)
		}
		tok, _, err := repo.Login(name, benchPass)
		if err != nil {
			b.Fatalf("login: %v", err)
		}
		p.users = append(p.users, u.ID)
		p.tokens = append(p.tokens, tok)
	}
	return p
}

// reportMemory reports heap usage as a custom metric.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.HeapAlloc)/1024/1024, prefix+"_heap_MB")
}

func sizeLabel(size int) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%dMB", size/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%dKB", size/1024)
	default:
		return fmt.Sprintf("%dB", size)
	}
}
