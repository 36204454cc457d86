package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/telemetry/logger"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// Config configures a Handler.
type Config struct {
	// Engine is the storage gate all handlers go through.
	Engine *storage.Engine

	// Cipher seals direct messages.
	Cipher adaptive.Cipher

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Handler serves the PetYard HTTP API.
type Handler struct {
	engine   *storage.Engine
	cipher   adaptive.Cipher
	logger   *slog.Logger
	validate *validator.Validate
}

// Route binds a method and path pattern to a handler function.
type Route struct {
	Pattern string
	Handler http.HandlerFunc

	// Auth marks routes that need an X-Auth-Key bound to the {user} segment.
	Auth bool
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		engine:   cfg.Engine,
		cipher:   cfg.Cipher,
		logger:   cfg.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns every API route. /metrics is served by the router.
func (h *Handler) Routes() []Route {
	return []Route{
		{Pattern: "GET /health", Handler: h.handleHealth},
		{Pattern: "GET /ready", Handler: h.handleReady},

		{Pattern: "POST /auth/signup", Handler: h.handleSignup},
		{Pattern: "POST /auth/login", Handler: h.handleLogin},
		{Pattern: "POST /auth/logout/{user}/{token}", Handler: h.handleLogout},
		{Pattern: "POST /auth/refresh_token/{user}/{token}", Handler: h.handleRefresh},
		{Pattern: "GET /auth/verify/{user}/{token}", Handler: h.handleVerify},

		{Pattern: "GET /users/{user}", Handler: h.handleGetUser, Auth: true},
		{Pattern: "PATCH /users/{user}", Handler: h.handleUpdateUser, Auth: true},
		{Pattern: "DELETE /users/{user}", Handler: h.handleDeleteUser, Auth: true},

		{Pattern: "POST /users/{user}/pets/new", Handler: h.handleCreatePet, Auth: true},
		{Pattern: "GET /users/{user}/pets/{pet}", Handler: h.handleGetPet, Auth: true},
		{Pattern: "PATCH /users/{user}/pets/{pet}", Handler: h.handleUpdatePet, Auth: true},
		{Pattern: "DELETE /users/{user}/pets/{pet}", Handler: h.handleDeletePet, Auth: true},
		{Pattern: "POST /users/{user}/pets/{pet}/feed", Handler: h.handleFeedPet, Auth: true},
		{Pattern: "POST /users/{user}/pets/{pet}/play", Handler: h.handlePlayWithPet, Auth: true},

		{Pattern: "POST /users/{user}/pet_yards/new", Handler: h.handleCreateYard, Auth: true},
		{Pattern: "GET /users/{user}/pet_yards/{yard}", Handler: h.handleGetYard, Auth: true},
		{Pattern: "PATCH /users/{user}/pet_yards/{yard}", Handler: h.handleUpdateYard, Auth: true},
		{Pattern: "DELETE /users/{user}/pet_yards/{yard}", Handler: h.handleDeleteYard, Auth: true},
		{Pattern: "PATCH /users/{user}/pet_yards/{yard}/member/{member}", Handler: h.handleAddMember, Auth: true},
		{Pattern: "DELETE /users/{user}/pet_yards/{yard}/member/{member}", Handler: h.handleRemoveMember, Auth: true},
		{Pattern: "PATCH /users/{user}/pet_yards/{yard}/pet/{pet}", Handler: h.handleAddYardPet, Auth: true},
		{Pattern: "DELETE /users/{user}/pet_yards/{yard}/pet/{pet}", Handler: h.handleRemoveYardPet, Auth: true},

		{Pattern: "POST /users/{user}/messages/{peer}", Handler: h.handleSendMessage, Auth: true},
		{Pattern: "GET /users/{user}/messages/{peer}", Handler: h.handleMessages, Auth: true},

		{Pattern: "GET /public/user/{id}", Handler: h.handlePublicUser},
		{Pattern: "GET /public/pet/{id}", Handler: h.handlePublicPet},
		{Pattern: "GET /public/pet_yard/{id}", Handler: h.handlePublicYard},
	}
}

// Mux registers Routes on a new ServeMux without any middleware.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	for _, rt := range h.Routes() {
		mux.HandleFunc(rt.Pattern, rt.Handler)
	}
	return mux
}

// view and update run fn through the storage gate.
func (h *Handler) view(r *http.Request, fn func(*service.Repository) error) error {
	return h.engine.View(r.Context(), fn)
}

func (h *Handler) update(r *http.Request, fn func(*service.Repository) error) error {
	return h.engine.Update(r.Context(), fn)
}

// decode reads a JSON body into v and validates its struct tags.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrBadRequest.WithDetails("request body is empty")
		}
		return domain.ErrBadRequest.WithDetails("invalid request body").WithCause(err)
	}
	if err := h.validate.Struct(v); err != nil {
		return domain.ErrInvalidArgument.WithDetails(formatValidation(err))
	}
	return nil
}

func formatValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleServiceError converts repository and gate errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		var details any
		if de.Details != "" {
			details = de.Details
		}
		h.writeError(w, r, errorCodeToHTTPStatus(de.Code), de.Code, de.Message, details)
		return
	}

	if errors.Is(err, storage.ErrClosed) {
		code := domain.ErrServiceUnavailable.Code
		h.writeError(w, r, http.StatusServiceUnavailable, code, "store is shutting down", nil)
		return
	}

	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-4220"):
		return http.StatusUnprocessableEntity
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "PY-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
