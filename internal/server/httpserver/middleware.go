package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/telemetry/logger"
)

// AuthHeader carries the session token on authenticated routes.
const AuthHeader = "X-Auth-Key"

type contextKey string

// ContextKeyStartTime is the context key for request start time.
const ContextKeyStartTime contextKey = "start_time"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Metrics receives HTTP measurements. *metric.Registry implements it.
type Metrics interface {
	RecordRequest(method, route string, status int)
	ObserveRequestDuration(method, route string, seconds float64)
	IncRateLimited()
	RecordTokenValidation(result string)
	RecordAuthFailure(reason string)
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(string, string, int)              {}
func (nopMetrics) ObserveRequestDuration(string, string, float64) {}
func (nopMetrics) IncRateLimited()                                {}
func (nopMetrics) RecordTokenValidation(string)                   {}
func (nopMetrics) RecordAuthFailure(string)                       {}

// RequestID adds a unique request ID to each request. An incoming
// X-Request-ID header is kept.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = "req-" + ulid.Make().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestIDFromContext retrieves the request ID from context.
func GetRequestIDFromContext(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

// AuthConfig configures the Auth middleware.
type AuthConfig struct {
	Engine  *storage.Engine
	Metrics Metrics
}

// Auth requires an X-Auth-Key token issued to the user named by the
// {user} path segment. Missing, expired, unknown and foreign tokens are
// all 401.
func Auth(cfg *AuthConfig) Middleware {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := r.Header.Get(AuthHeader)
			userID := r.PathValue("user")
			if value == "" {
				metrics.RecordAuthFailure("missing")
				writeError(w, r, domain.ErrUnauthorized.Code, "authentication required")
				return
			}

			var valid bool
			err := cfg.Engine.View(r.Context(), func(repo *service.Repository) error {
				valid = repo.Tokens().Validate(value, userID)
				return nil
			})
			if err != nil {
				writeError(w, r, domain.ErrServiceUnavailable.Code, "store unavailable")
				return
			}
			if !valid {
				metrics.RecordTokenValidation("invalid")
				metrics.RecordAuthFailure("invalid_token")
				writeError(w, r, domain.ErrTokenInvalid.Code, "invalid token")
				return
			}

			metrics.RecordTokenValidation("valid")
			next.ServeHTTP(w, r.WithContext(logger.WithUserID(r.Context(), userID)))
		})
	}
}

// Persist writes a snapshot after every state-changing request. Write
// failures are logged; the response has already been sent.
func Persist(engine *storage.Engine, timeout time.Duration, log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
			defer cancel()
			if err := engine.Persist(ctx); err != nil {
				log.Error("snapshot write failed",
					"request_id", GetRequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
			}
		})
	}
}

// Audit logs every request and records request metrics. The route label
// is the matched mux pattern, never the raw path.
func Audit(log *slog.Logger, metrics Metrics) Middleware {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			startTime, ok := r.Context().Value(ContextKeyStartTime).(time.Time)
			if !ok {
				startTime = time.Now()
			}
			duration := time.Since(startTime)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordRequest(r.Method, route, wrapped.statusCode)
			metrics.ObserveRequestDuration(r.Method, route, duration.Seconds())

			attrs := []any{
				"request_id", GetRequestIDFromContext(r.Context()),
				"method", r.Method,
				"route", route,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", getClientIP(r),
			}
			if userID := r.PathValue("user"); userID != "" {
				attrs = append(attrs, "user_id", userID)
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", GetRequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
					)
					writeError(w, r, domain.ErrInternalServer.Code, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// writeError writes a middleware error in the handler envelope format.
func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)

	status := http.StatusInternalServerError
	switch {
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		status = http.StatusUnauthorized
	case strings.HasSuffix(code, "-4290"):
		status = http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5030"):
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":       code,
		"message":    message,
		"request_id": GetRequestIDFromContext(r.Context()),
		"timestamp":  time.Now().UnixMilli(),
	})
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// SplitHostPort handles IPv6 forms like [::1]:8080.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
