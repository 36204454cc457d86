package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/storage/snapshot"
)

// Default configuration values.
const (
	DefaultSweepInterval  = time.Minute
	DefaultNeglectAfter   = 72 * time.Hour
	DefaultPersistTimeout = 30 * time.Second
)

// ErrClosed is returned by gate operations after Close.
var ErrClosed = errors.New("storage: engine closed")

// Metrics receives engine measurements. *metric.Registry implements it.
type Metrics interface {
	ObserveGateWait(seconds float64)
	RecordSnapshotWrite(ok bool, size int64, seconds float64)
	AddPetsSwept(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveGateWait(float64)                  {}
func (nopMetrics) RecordSnapshotWrite(bool, int64, float64) {}
func (nopMetrics) AddPetsSwept(int)                         {}

// Config configures the storage engine.
type Config struct {
	// SweepEnabled turns on the background neglect sweep.
	SweepEnabled bool

	// SweepInterval is the time between sweeps.
	SweepInterval time.Duration

	// NeglectAfter is how long a pet may go without care before the sweep
	// removes it.
	NeglectAfter time.Duration

	// PersistTimeout bounds each background snapshot write.
	PersistTimeout time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics Metrics
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		SweepEnabled:   true,
		SweepInterval:  DefaultSweepInterval,
		NeglectAfter:   DefaultNeglectAfter,
		PersistTimeout: DefaultPersistTimeout,
		Logger:         slog.Default(),
	}
}

// Engine guards a Repository and persists it through a snapshot Store.
type Engine struct {
	cfg    Config
	store  *snapshot.Store
	logger *slog.Logger

	// mu is the gate and guards repo.
	mu   sync.Mutex
	repo *service.Repository

	// persisted is the repository revision last written, guarded by
	// persistMu.
	persistMu sync.Mutex
	persisted uint64

	ready  atomic.Bool
	closed atomic.Bool

	startOnce sync.Once
	closeOnce sync.Once
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New creates an engine. It does NOT load any state; call Recover first.
func New(repo *service.Repository, store *snapshot.Store, cfg Config) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("storage: repository is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage: snapshot store is required")
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.NeglectAfter <= 0 {
		cfg.NeglectAfter = DefaultNeglectAfter
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}

	return &Engine{
		cfg:    cfg,
		store:  store,
		logger: cfg.Logger.With("component", "storage"),
		repo:   repo,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Recover loads the last snapshot into the repository. A missing snapshot
// starts an empty store; any other failure is returned and must stop
// startup.
func (e *Engine) Recover(ctx context.Context) error {
	start := time.Now()

	state, info, err := e.store.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		e.logger.Info("no snapshot found, starting with empty store",
			"backend", e.store.Backend().Name(),
			"location", e.store.Backend().Location())
		state = domain.NewState()
	case err != nil:
		return fmt.Errorf("load snapshot from %s: %w", e.store.Backend().Location(), err)
	default:
		e.logger.Info("snapshot loaded",
			"backend", info.Backend,
			"location", info.Location,
			"created_at", info.CreatedAt,
			"users", info.Counts.Users,
			"pets", info.Counts.Pets,
			"pet_yards", info.Counts.Yards,
			"tokens", info.Counts.Tokens,
			"size_bytes", info.Size,
			"elapsed", time.Since(start))
	}

	e.mu.Lock()
	e.repo.Reset(state)
	gen := e.repo.Revision()
	e.mu.Unlock()

	e.persistMu.Lock()
	e.persisted = gen
	e.persistMu.Unlock()

	e.ready.Store(true)
	return nil
}

// Ready reports whether Recover has completed and the engine is open.
func (e *Engine) Ready() bool {
	return e.ready.Load() && !e.closed.Load()
}

func (e *Engine) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	e.mu.Lock()
	e.cfg.Metrics.ObserveGateWait(time.Since(start).Seconds())
	return nil
}

// View runs fn with exclusive access to the repository without marking
// the state dirty.
func (e *Engine) View(ctx context.Context, fn func(*service.Repository) error) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return fn(e.repo)
}

// Update runs fn with exclusive access to the repository. The state is
// dirty afterwards only if fn changed something, whatever fn returns.
func (e *Engine) Update(ctx context.Context, fn func(*service.Repository) error) error {
	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return fn(e.repo)
}

// Dirty reports whether the state changed since the last write.
func (e *Engine) Dirty() bool {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Revision() != e.persisted
}

// Counts returns the entity counts. It takes the gate and is safe to call
// from a metrics scrape.
func (e *Engine) Counts() domain.Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Counts()
}

// Persist writes a snapshot if the state changed since the last write.
func (e *Engine) Persist(ctx context.Context) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	gen := e.repo.Revision()
	if gen == e.persisted {
		e.mu.Unlock()
		return nil
	}
	enc, err := e.store.Encode(e.repo.State())
	e.mu.Unlock()
	if err != nil {
		e.cfg.Metrics.RecordSnapshotWrite(false, 0, 0)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	start := time.Now()
	info, err := e.store.Write(ctx, enc)
	elapsed := time.Since(start)
	if err != nil {
		e.cfg.Metrics.RecordSnapshotWrite(false, 0, 0)
		return fmt.Errorf("write snapshot: %w", err)
	}
	e.cfg.Metrics.RecordSnapshotWrite(true, info.Size, elapsed.Seconds())

	e.persisted = gen
	e.logger.Debug("snapshot written",
		"revision", gen,
		"size_bytes", info.Size,
		"checksum", info.Checksum,
		"elapsed", elapsed)
	return nil
}

// Sweep removes neglected pets and persists the result. It returns the
// removed pet ids.
func (e *Engine) Sweep(ctx context.Context) ([]string, error) {
	var removed []string
	err := e.Update(ctx, func(r *service.Repository) error {
		removed = r.SweepNeglected(e.cfg.NeglectAfter)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(removed) > 0 {
		e.cfg.Metrics.AddPetsSwept(len(removed))
		e.logger.Info("neglected pets removed",
			"count", len(removed),
			"neglect_after", e.cfg.NeglectAfter)
	}

	if err := e.Persist(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// Start launches the background sweep loop when sweeping is enabled.
func (e *Engine) Start() {
	if !e.cfg.SweepEnabled {
		return
	}
	e.startOnce.Do(func() {
		e.started = true
		go e.sweepLoop()
	})
}

func (e *Engine) sweepLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), e.cfg.PersistTimeout)
			if _, err := e.Sweep(ctx); err != nil {
				e.logger.Error("neglect sweep failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// Close stops the sweep loop and writes a final snapshot. Gate operations
// fail with ErrClosed afterwards.
func (e *Engine) Close(ctx context.Context) error {
	var err error
	e.closeOnce.Do(func() {
		e.logger.Info("shutting down storage engine")

		// Prevent a later Start from launching the loop.
		e.startOnce.Do(func() {})
		close(e.stopCh)
		if e.started {
			<-e.doneCh
		}

		e.closed.Store(true)
		if e.ready.Load() {
			err = e.Persist(ctx)
		}

		if err != nil {
			e.logger.Error("final snapshot failed", "error", err)
			return
		}
		e.logger.Info("storage engine shutdown complete")
	})
	return err
}
