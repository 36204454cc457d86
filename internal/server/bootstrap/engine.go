package bootstrap

import (
	"log/slog"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/server/config"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/storage/snapshot"
)

// EngineOptions carries process-level dependencies of NewEngine.
type EngineOptions struct {
	Logger  *slog.Logger
	Metrics storage.Metrics
	Clock   domain.Clock
}

// NewEngine builds an empty repository with the configured token TTL and
// puts it behind a storage engine. Callers run Recover before use.
func NewEngine(cfg *config.ServerConfig, store *snapshot.Store, opts EngineOptions) (*storage.Engine, error) {
	repoOpts := []service.Option{service.WithTokenTTL(cfg.Auth.TokenTTL)}
	if opts.Clock != nil {
		repoOpts = append(repoOpts, service.WithClock(opts.Clock))
	}
	repo := service.NewRepository(nil, repoOpts...)

	engineCfg := storage.DefaultConfig()
	engineCfg.SweepEnabled = cfg.Sweep.Enabled
	engineCfg.SweepInterval = cfg.Sweep.Interval
	engineCfg.NeglectAfter = cfg.Sweep.NeglectAfter
	engineCfg.Metrics = opts.Metrics
	if opts.Logger != nil {
		engineCfg.Logger = opts.Logger
	}

	return storage.New(repo, store, engineCfg)
}
