package handler

import (
	"net/http"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
)

// handleCreateYard handles POST /users/{user}/pet_yards/new.
func (h *Handler) handleCreateYard(w http.ResponseWriter, r *http.Request) {
	var req CreateYardRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var yard *domain.PetYard
	err := h.update(r, func(repo *service.Repository) error {
		y, err := repo.CreateYard(r.PathValue("user"), req.Name, req.Image)
		yard = y
		return err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, yard)
}

// handleGetYard handles GET /users/{user}/pet_yards/{yard}. Members may
// read the yard; only the owner may change it.
func (h *Handler) handleGetYard(w http.ResponseWriter, r *http.Request) {
	userID, yardID := r.PathValue("user"), r.PathValue("yard")

	var yard *domain.PetYard
	err := h.view(r, func(repo *service.Repository) error {
		if err := repo.CheckYardMember(userID, yardID); err != nil {
			return err
		}
		y, err := repo.GetYard(yardID)
		yard = y
		return err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, yard)
}

// handleUpdateYard handles PATCH /users/{user}/pet_yards/{yard}.
func (h *Handler) handleUpdateYard(w http.ResponseWriter, r *http.Request) {
	var req UpdateYardRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.ownedYard(w, r, func(repo *service.Repository, yardID string) (*domain.PetYard, error) {
		return repo.UpdateYard(yardID, service.YardPatch{Name: req.Name, Image: req.Image})
	})
}

// handleDeleteYard handles DELETE /users/{user}/pet_yards/{yard}.
func (h *Handler) handleDeleteYard(w http.ResponseWriter, r *http.Request) {
	userID, yardID := r.PathValue("user"), r.PathValue("yard")

	err := h.update(r, func(repo *service.Repository) error {
		if err := repo.CheckYardOwner(userID, yardID); err != nil {
			return err
		}
		return repo.DeleteYard(yardID)
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, DeleteResponse{Deleted: yardID})
}

// handleAddMember handles PATCH /users/{user}/pet_yards/{yard}/member/{member}.
func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	member := r.PathValue("member")
	h.ownedYard(w, r, func(repo *service.Repository, yardID string) (*domain.PetYard, error) {
		return repo.AddMember(yardID, member)
	})
}

// handleRemoveMember handles DELETE /users/{user}/pet_yards/{yard}/member/{member}.
func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	member := r.PathValue("member")
	h.ownedYard(w, r, func(repo *service.Repository, yardID string) (*domain.PetYard, error) {
		return repo.RemoveMember(yardID, member)
	})
}

// handleAddYardPet handles PATCH /users/{user}/pet_yards/{yard}/pet/{pet}.
// The caller must own both the yard and the pet.
func (h *Handler) handleAddYardPet(w http.ResponseWriter, r *http.Request) {
	userID, petID := r.PathValue("user"), r.PathValue("pet")
	h.ownedYard(w, r, func(repo *service.Repository, yardID string) (*domain.PetYard, error) {
		if err := repo.CheckPetOwner(userID, petID); err != nil {
			return nil, err
		}
		return repo.AddPetToYard(yardID, petID)
	})
}

// handleRemoveYardPet handles DELETE /users/{user}/pet_yards/{yard}/pet/{pet}.
func (h *Handler) handleRemoveYardPet(w http.ResponseWriter, r *http.Request) {
	petID := r.PathValue("pet")
	h.ownedYard(w, r, func(repo *service.Repository, yardID string) (*domain.PetYard, error) {
		return repo.RemovePetFromYard(yardID, petID)
	})
}

// ownedYard runs a yard mutation after checking the path user owns the yard.
func (h *Handler) ownedYard(w http.ResponseWriter, r *http.Request, fn func(*service.Repository, string) (*domain.PetYard, error)) {
	userID, yardID := r.PathValue("user"), r.PathValue("yard")

	var yard *domain.PetYard
	err := h.update(r, func(repo *service.Repository) error {
		if err := repo.CheckYardOwner(userID, yardID); err != nil {
			return err
		}
		y, err := fn(repo, yardID)
		yard = y
		return err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, yard)
}
