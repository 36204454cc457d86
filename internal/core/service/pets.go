package service

import (
	"github.com/yndnr/petyard-go/internal/core/domain"
)

// PetPatch carries optional pet attribute changes. Nil fields are left as is.
type PetPatch struct {
	Name    *string
	Species *string
	Image   *uint64
}

// CreatePet creates a pet owned by ownerID. When yardID is non-empty the
// pet is placed into that yard in the same operation.
func (r *Repository) CreatePet(ownerID, name, species string, image uint64, yardID string) (*domain.Pet, error) {
	owner, err := r.user(ownerID)
	if err != nil {
		return nil, err
	}
	var y *domain.PetYard
	if yardID != "" {
		if y, err = r.yard(yardID); err != nil {
			return nil, err
		}
	}

	p := domain.NewPet(ownerID, name, species, image, r.clock.Now())
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r.state.Pets[p.ID] = p
	owner.Pets.Add(p.ID)
	if y != nil {
		link(p, y)
	}
	r.touch()
	return p.Clone(), nil
}

// GetPet returns a copy of the pet.
func (r *Repository) GetPet(id string) (*domain.Pet, error) {
	p, err := r.pet(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// ListPets returns copies of every pet.
func (r *Repository) ListPets() []*domain.Pet {
	out := make([]*domain.Pet, 0, len(r.state.Pets))
	for _, p := range r.state.Pets {
		out = append(out, p.Clone())
	}
	return out
}

// ReplacePet stores p in place of the pet with the same id.
// Owner and Yard are relationship fields maintained by the cascade
// operations and are kept from the stored record.
func (r *Repository) ReplacePet(p *domain.Pet) (*domain.Pet, error) {
	cur, err := r.pet(p.ID)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	next := p.Clone()
	next.Owner = cur.Owner
	next.Yard = cur.Yard
	r.state.Pets[next.ID] = next
	r.touch()
	return next.Clone(), nil
}

// UpdatePet applies patch to the stored pet.
func (r *Repository) UpdatePet(id string, patch PetPatch) (*domain.Pet, error) {
	cur, err := r.pet(id)
	if err != nil {
		return nil, err
	}

	next := cur.Clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Species != nil {
		next.Species = *patch.Species
	}
	if patch.Image != nil {
		next.Image = *patch.Image
	}
	return r.ReplacePet(next)
}

// DeletePet detaches the pet from its yard and owner, then removes it.
// The pet's own Yard field decides which yard to detach from.
func (r *Repository) DeletePet(id string) error {
	if _, err := r.pet(id); err != nil {
		return err
	}
	r.deletePet(id)
	return nil
}

// FeedPet records a feeding and grants FeedExperience.
func (r *Repository) FeedPet(id string) (*domain.Pet, error) {
	p, err := r.pet(id)
	if err != nil {
		return nil, err
	}
	p.LastFed = r.clock.Now().UnixMilli()
	p.AddExperience(FeedExperience)
	r.touch()
	return p.Clone(), nil
}

// PlayWithPet records a petting session and grants PlayExperience.
func (r *Repository) PlayWithPet(id string) (*domain.Pet, error) {
	p, err := r.pet(id)
	if err != nil {
		return nil, err
	}
	p.LastPet = r.clock.Now().UnixMilli()
	p.AddExperience(PlayExperience)
	r.touch()
	return p.Clone(), nil
}

// CheckPetOwner returns ErrForbidden unless userID owns the pet.
func (r *Repository) CheckPetOwner(userID, petID string) error {
	p, err := r.pet(petID)
	if err != nil {
		return err
	}
	if p.Owner != userID {
		return domain.ErrForbidden.WithDetails("pet " + petID)
	}
	return nil
}

func (r *Repository) deletePet(id string) {
	p, ok := r.state.Pets[id]
	if !ok {
		return
	}
	if p.HasYard() {
		if y, ok := r.state.Yards[p.Yard]; ok {
			y.Pets.Remove(id)
		}
	}
	if owner, ok := r.state.Users[p.Owner]; ok {
		owner.Pets.Remove(id)
	}
	delete(r.state.Pets, id)
	r.touch()
}

// moveTo places p in y, detaching it from any previous yard first.
func (r *Repository) moveTo(p *domain.Pet, y *domain.PetYard) {
	if p.HasYard() && p.Yard != y.ID {
		if old, ok := r.state.Yards[p.Yard]; ok {
			old.Pets.Remove(p.ID)
		}
	}
	if p.Yard != y.ID || !y.Pets.Contains(p.ID) {
		link(p, y)
		r.touch()
	}
}

// link sets both sides of the pet-yard relation.
func link(p *domain.Pet, y *domain.PetYard) {
	p.Yard = y.ID
	y.Pets.Add(p.ID)
}
