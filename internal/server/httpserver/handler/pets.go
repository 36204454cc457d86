package handler

import (
	"net/http"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
)

func petResponse(repo *service.Repository, p *domain.Pet) PetResponse {
	now := repo.Now()
	return PetResponse{Pet: p, Hunger: p.Hunger(now), Mood: p.Mood(now)}
}

// handleCreatePet handles POST /users/{user}/pets/new. Placing the new pet
// in a yard requires owning that yard.
func (h *Handler) handleCreatePet(w http.ResponseWriter, r *http.Request) {
	var req CreatePetRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	userID := r.PathValue("user")

	var resp PetResponse
	err := h.update(r, func(repo *service.Repository) error {
		if req.PetYard != "" {
			if err := repo.CheckYardOwner(userID, req.PetYard); err != nil {
				return err
			}
		}
		p, err := repo.CreatePet(userID, req.Name, req.Species, req.Image, req.PetYard)
		if err != nil {
			return err
		}
		resp = petResponse(repo, p)
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, resp)
}

// handleGetPet handles GET /users/{user}/pets/{pet}.
func (h *Handler) handleGetPet(w http.ResponseWriter, r *http.Request) {
	userID, petID := r.PathValue("user"), r.PathValue("pet")

	var resp PetResponse
	err := h.view(r, func(repo *service.Repository) error {
		if err := repo.CheckPetOwner(userID, petID); err != nil {
			return err
		}
		p, err := repo.GetPet(petID)
		if err != nil {
			return err
		}
		resp = petResponse(repo, p)
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleUpdatePet handles PATCH /users/{user}/pets/{pet}.
func (h *Handler) handleUpdatePet(w http.ResponseWriter, r *http.Request) {
	var req UpdatePetRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	userID, petID := r.PathValue("user"), r.PathValue("pet")

	var resp PetResponse
	err := h.update(r, func(repo *service.Repository) error {
		if err := repo.CheckPetOwner(userID, petID); err != nil {
			return err
		}
		if req.PetYard != nil && *req.PetYard != "" {
			if err := repo.CheckYardOwner(userID, *req.PetYard); err != nil {
				return err
			}
		}

		p, err := repo.UpdatePet(petID, service.PetPatch{
			Name:    req.Name,
			Species: req.Species,
			Image:   req.Image,
		})
		if err != nil {
			return err
		}

		if req.PetYard != nil {
			switch {
			case *req.PetYard != "":
				_, err = repo.AddPetToYard(*req.PetYard, petID)
			case p.HasYard():
				_, err = repo.RemovePetFromYard(p.Yard, petID)
			}
			if err != nil {
				return err
			}
			if p, err = repo.GetPet(petID); err != nil {
				return err
			}
		}
		resp = petResponse(repo, p)
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleDeletePet handles DELETE /users/{user}/pets/{pet}.
func (h *Handler) handleDeletePet(w http.ResponseWriter, r *http.Request) {
	userID, petID := r.PathValue("user"), r.PathValue("pet")

	err := h.update(r, func(repo *service.Repository) error {
		if err := repo.CheckPetOwner(userID, petID); err != nil {
			return err
		}
		return repo.DeletePet(petID)
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, DeleteResponse{Deleted: petID})
}

// handleFeedPet handles POST /users/{user}/pets/{pet}/feed.
func (h *Handler) handleFeedPet(w http.ResponseWriter, r *http.Request) {
	h.care(w, r, (*service.Repository).FeedPet)
}

// handlePlayWithPet handles POST /users/{user}/pets/{pet}/play.
func (h *Handler) handlePlayWithPet(w http.ResponseWriter, r *http.Request) {
	h.care(w, r, (*service.Repository).PlayWithPet)
}

func (h *Handler) care(w http.ResponseWriter, r *http.Request, act func(*service.Repository, string) (*domain.Pet, error)) {
	userID, petID := r.PathValue("user"), r.PathValue("pet")

	var resp PetResponse
	err := h.update(r, func(repo *service.Repository) error {
		if err := repo.CheckPetOwner(userID, petID); err != nil {
			return err
		}
		p, err := act(repo, petID)
		if err != nil {
			return err
		}
		resp = petResponse(repo, p)
		return nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
