package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/pkg/cmap"
)

// Rate limit defaults.
const (
	DefaultRPS = 20

	// DefaultLimiterIdleTTL is how long a client's bucket survives without
	// requests.
	DefaultLimiterIdleTTL = 10 * time.Minute
)

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	// RPS is the sustained request rate per client IP.
	RPS float64

	// Burst is the bucket size.
	Burst int

	// IdleTTL evicts buckets of clients that went quiet.
	IdleTTL time.Duration

	Metrics Metrics
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	cfg       RateLimitConfig
	buckets   *cmap.Map[string, *bucket]
	lastEvict atomic.Int64
	now       func() time.Time
}

// NewRateLimiter creates a RateLimiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Max(1, math.Ceil(cfg.RPS)))
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultLimiterIdleTTL
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	rl := &RateLimiter{
		cfg:     cfg,
		buckets: cmap.New[string, *bucket](),
		now:     time.Now,
	}
	rl.lastEvict.Store(rl.now().UnixNano())
	return rl
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()
	rl.maybeEvict(now)

	b, _ := rl.buckets.GetOrCreate(ip, func() *bucket {
		return &bucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
	})
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	return rl.buckets.Count()
}

// Evict drops buckets idle since before now minus IdleTTL and returns how
// many were removed.
func (rl *RateLimiter) Evict(now time.Time) int {
	cutoff := now.Add(-rl.cfg.IdleTTL).UnixNano()
	return rl.buckets.DeleteFunc(func(_ string, b *bucket) bool {
		return b.lastSeen.Load() < cutoff
	})
}

// maybeEvict runs Evict at most once per IdleTTL.
func (rl *RateLimiter) maybeEvict(now time.Time) {
	last := rl.lastEvict.Load()
	if now.UnixNano()-last < int64(rl.cfg.IdleTTL) {
		return
	}
	if rl.lastEvict.CompareAndSwap(last, now.UnixNano()) {
		rl.Evict(now)
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() Middleware {
	retryAfter := strconv.Itoa(int(math.Max(1, math.Ceil(1/rl.cfg.RPS))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(getClientIP(r)) {
				rl.cfg.Metrics.IncRateLimited()
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, r, domain.ErrRateLimited.Code, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
