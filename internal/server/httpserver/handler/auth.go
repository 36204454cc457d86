package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
)

// handleSignup handles POST /auth/signup.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var profile domain.Profile
	err := h.update(r, func(repo *service.Repository) error {
		u, err := repo.CreateUser(req.Username, req.Email, req.Password)
		if err != nil {
			return err
		}
		profile = u.Profile()
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user signed up", "user_id", profile.ID)
	h.writeJSON(w, r, http.StatusCreated, profile)
}

// handleLogin handles POST /auth/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var resp LoginResponse
	err := h.update(r, func(repo *service.Repository) error {
		tok, u, err := repo.Login(req.Username, req.Password)
		if err != nil {
			return err
		}
		t, _ := repo.Tokens().Lookup(tok)
		resp = LoginResponse{UserID: u.ID, Token: tok, ExpiresAt: t.ExpiresAtTime()}
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleLogout handles POST /auth/logout/{user}/{token}.
// An unknown token, or one issued to another user, is reported as 401.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID, value := r.PathValue("user"), r.PathValue("token")

	err := h.update(r, func(repo *service.Repository) error {
		t, ok := repo.Tokens().Lookup(value)
		if !ok || t.UserID != userID {
			return domain.ErrTokenInvalid
		}
		repo.Tokens().Revoke(value)
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handleRefresh handles POST /auth/refresh_token/{user}/{token}.
// Possession of the token string is enough to extend it.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("token")

	var expires time.Time
	err := h.update(r, func(repo *service.Repository) error {
		if !repo.Tokens().Refresh(value) {
			return domain.ErrTokenInvalid
		}
		t, _ := repo.Tokens().Lookup(value)
		expires = t.ExpiresAtTime()
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, TokenResponse{Valid: true, ExpiresAt: &expires})
}

// handleVerify handles GET /auth/verify/{user}/{token}.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	userID, value := r.PathValue("user"), r.PathValue("token")

	var resp TokenResponse
	err := h.view(r, func(repo *service.Repository) error {
		if !repo.Tokens().Validate(value, userID) {
			return domain.ErrTokenInvalid
		}
		t, _ := repo.Tokens().Lookup(value)
		expires := t.ExpiresAtTime()
		resp = TokenResponse{Valid: true, ExpiresAt: &expires}
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
