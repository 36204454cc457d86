package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/petyard-go/internal/server/httpserver/handler"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/telemetry/metric"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// DefaultPersistTimeout bounds the snapshot write that follows a request.
const DefaultPersistTimeout = 30 * time.Second

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Engine is the storage gate.
	Engine *storage.Engine

	// Cipher seals direct messages.
	Cipher adaptive.Cipher

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics serves /metrics and records request metrics. Nil disables both.
	Metrics *metric.Registry

	// RateLimit enables per-IP rate limiting when non-nil.
	RateLimit *RateLimitConfig

	// EnableAudit enables request logging for all routes.
	EnableAudit bool

	// PersistTimeout bounds the post-request snapshot write.
	PersistTimeout time.Duration
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		RateLimit:      &RateLimitConfig{RPS: DefaultRPS, Burst: 2 * DefaultRPS},
		EnableAudit:    true,
		PersistTimeout: DefaultPersistTimeout,
	}
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
//
// Order per route: RequestID -> Recover -> Audit -> RateLimit -> Auth -> Persist -> handler.
// Health, readiness and metrics skip rate limiting and authentication.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}

	var metrics Metrics = nopMetrics{}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
	}

	h := handler.New(handler.Config{
		Engine: cfg.Engine,
		Cipher: cfg.Cipher,
		Logger: cfg.Logger,
	})

	base := []Middleware{RequestID(), Recover(cfg.Logger)}
	if cfg.EnableAudit {
		base = append(base, Audit(cfg.Logger, metrics))
	}

	var limiter Middleware
	if cfg.RateLimit != nil {
		rl := *cfg.RateLimit
		if rl.Metrics == nil {
			rl.Metrics = metrics
		}
		limiter = NewRateLimiter(rl).Middleware()
	}

	auth := Auth(&AuthConfig{Engine: cfg.Engine, Metrics: metrics})
	persist := Persist(cfg.Engine, cfg.PersistTimeout, cfg.Logger)

	mux := http.NewServeMux()
	for _, rt := range h.Routes() {
		chain := append([]Middleware(nil), base...)
		if limiter != nil && !isProbe(rt.Pattern) {
			chain = append(chain, limiter)
		}
		if rt.Auth {
			chain = append(chain, auth)
		}
		chain = append(chain, persist)
		mux.Handle(rt.Pattern, Chain(rt.Handler, chain...))
	}

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), RequestID(), Recover(cfg.Logger)))
	}

	return mux
}

func isProbe(pattern string) bool {
	return pattern == "GET /health" || pattern == "GET /ready"
}
