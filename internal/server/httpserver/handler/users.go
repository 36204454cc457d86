package handler

import (
	"net/http"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
)

// handleGetUser handles GET /users/{user}.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	err := h.view(r, func(repo *service.Repository) error {
		u, err := repo.GetUser(r.PathValue("user"))
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
	h.writeJSON(w, r, http.StatusOK, profile)
}

// handleUpdateUser handles PATCH /users/{user}.
func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var profile domain.Profile
	err := h.update(r, func(repo *service.Repository) error {
		u, err := repo.UpdateUser(r.PathValue("user"), service.UserPatch{
			Email:    req.Email,
			Password: req.Password,
		})
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
	h.writeJSON(w, r, http.StatusOK, profile)
}

// handleDeleteUser handles DELETE /users/{user}. Owned pets and yards go
// with the account.
func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user")
	err := h.update(r, func(repo *service.Repository) error {
		return repo.DeleteUser(userID)
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user deleted", "user_id", userID)
	h.writeJSON(w, r, http.StatusOK, DeleteResponse{Deleted: userID})
}
