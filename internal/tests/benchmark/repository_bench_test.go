package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/storage/snapshot"
)

// BenchmarkRepositoryCreatePet measures pet creation into a yard. Id sets
// are linear, so the population is rebuilt every batch pets.
func BenchmarkRepositoryCreatePet(b *testing.B) {
	const batch = 1000

	var (
		pop    *population
		owner  string
		yardID string
	)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if i%batch == 0 {
			b.StopTimer()
			pop = populate(b, 1)
			owner = pop.users[0]
			yardID = pop.repo.State().Users[owner].OwnedYards[0]
			b.StartTimer()
		}
		if _, err := pop.repo.CreatePet(owner, "bench", "cat", 0, yardID); err != nil {
			b.Fatalf("create pet: %v", err)
		}
	}
}

// BenchmarkRepositoryFeedPet measures the read-modify-write of a care action.
func BenchmarkRepositoryFeedPet(b *testing.B) {
	for _, count := range UserCounts {
		b.Run(fmt.Sprintf("users_%d", count), func(b *testing.B) {
			pop := populate(b, count)

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := pop.repo.FeedPet(pop.pets[i%len(pop.pets)]); err != nil {
					b.Fatalf("feed: %v", err)
				}
			}
		})
	}
}

// BenchmarkTokenValidate measures token lookup against the token table.
func BenchmarkTokenValidate(b *testing.B) {
	for _, count := range UserCounts {
		b.Run(fmt.Sprintf("users_%d", count), func(b *testing.B) {
			pop := populate(b, count)
			tokens := pop.repo.Tokens()

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				n := i % len(pop.tokens)
				if !tokens.Validate(pop.tokens[n], pop.users[n]) {
					b.Fatal("token rejected")
				}
			}
		})
	}
}

// BenchmarkRepositoryDeleteUser measures the cascade of a user delete.
func BenchmarkRepositoryDeleteUser(b *testing.B) {
	b.StopTimer()
	for i := 0; i < b.N; i++ {
		pop := populate(b, 50)
		b.StartTimer()
		for _, id := range pop.users {
			if err := pop.repo.DeleteUser(id); err != nil {
				b.Fatalf("delete: %v", err)
			}
		}
		b.StopTimer()
	}
}

// BenchmarkSweepNeglected measures a sweep that removes every pet.
func BenchmarkSweepNeglected(b *testing.B) {
	b.StopTimer()
	for i := 0; i < b.N; i++ {
		pop := populate(b, 1000)
		pop.clock.Advance(100 * time.Hour)
		b.StartTimer()
		removed := pop.repo.SweepNeglected(72 * time.Hour)
		b.StopTimer()
		if len(removed) != len(pop.pets) {
			b.Fatalf("removed %d pets, want %d", len(removed), len(pop.pets))
		}
	}
}

// newPopulatedEngine saves pop through a fresh file store and recovers an
// engine over pop's repository from it.
func newPopulatedEngine(b *testing.B, pop *population) *storage.Engine {
	b.Helper()
	ctx := context.Background()

	backend, err := snapshot.NewFileBackend(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	store, err := snapshot.NewStore(snapshot.Options{Backend: backend, Codec: snapshot.CodecCBOR})
	if err != nil {
		b.Fatal(err)
	}
	if _, err := store.Save(ctx, pop.repo.State()); err != nil {
		b.Fatalf("save: %v", err)
	}

	cfg := storage.DefaultConfig()
	cfg.SweepEnabled = false
	cfg.Logger = slog.New(slog.DiscardHandler)

	engine, err := storage.New(pop.repo, store, cfg)
	if err != nil {
		b.Fatal(err)
	}
	if err := engine.Recover(ctx); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = engine.Close(ctx) })
	return engine
}

// BenchmarkGateParallel measures contention on the gate with a mix of
// reads and care actions, the shape of typical API traffic.
func BenchmarkGateParallel(b *testing.B) {
	pop := populate(b, 1000)
	engine := newPopulatedEngine(b, pop)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			pet := pop.pets[i%len(pop.pets)]
			var err error
			if i%4 == 0 {
				err = engine.Update(ctx, func(r *service.Repository) error {
					_, err := r.PlayWithPet(pet)
					return err
				})
			} else {
				err = engine.View(ctx, func(r *service.Repository) error {
					_, err := r.GetPet(pet)
					return err
				})
			}
			if err != nil {
				b.Errorf("gate: %v", err)
				return
			}
			i++
		}
	})
}

// BenchmarkEnginePersist measures a persist after a single mutation.
func BenchmarkEnginePersist(b *testing.B) {
	pop := populate(b, 1000)
	engine := newPopulatedEngine(b, pop)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pet := pop.pets[i%len(pop.pets)]
		if err := engine.Update(ctx, func(r *service.Repository) error {
			_, err := r.FeedPet(pet)
			return err
		}); err != nil {
			b.Fatal(err)
		}
		if err := engine.Persist(ctx); err != nil {
			b.Fatalf("persist: %v", err)
		}
	}
}
