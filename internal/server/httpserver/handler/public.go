package handler

import (
	"net/http"

	"github.com/yndnr/petyard-go/internal/core/service"
)

// handlePublicUser handles GET /public/user/{id}.
func (h *Handler) handlePublicUser(w http.ResponseWriter, r *http.Request) {
	h.public(w, r, func(repo *service.Repository, id string) (any, error) {
		u, err := repo.GetUser(id)
		if err != nil {
			return nil, err
		}
		return u.Public(), nil
	})
}

// handlePublicPet handles GET /public/pet/{id}.
func (h *Handler) handlePublicPet(w http.ResponseWriter, r *http.Request) {
	h.public(w, r, func(repo *service.Repository, id string) (any, error) {
		p, err := repo.GetPet(id)
		if err != nil {
			return nil, err
		}
		return p.Public(repo.Now()), nil
	})
}

// handlePublicYard handles GET /public/pet_yard/{id}.
func (h *Handler) handlePublicYard(w http.ResponseWriter, r *http.Request) {
	h.public(w, r, func(repo *service.Repository, id string) (any, error) {
		y, err := repo.GetYard(id)
		if err != nil {
			return nil, err
		}
		return y.Public(), nil
	})
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request, get func(*service.Repository, string) (any, error)) {
	var view any
	err := h.view(r, func(repo *service.Repository) error {
		v, err := get(repo, r.PathValue("id"))
		view = v
		return err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, view)
}
