package service

import (
	"github.com/yndnr/petyard-go/internal/core/domain"
)

// YardPatch carries optional yard attribute changes. Nil fields are left as is.
type YardPatch struct {
	Name  *string
	Image *uint64
}

// CreateYard creates a yard owned by ownerID.
func (r *Repository) CreateYard(ownerID, name string, image uint64) (*domain.PetYard, error) {
	owner, err := r.user(ownerID)
	if err != nil {
		return nil, err
	}

	y := domain.NewPetYard(ownerID, name, image)
	if err := y.Validate(); err != nil {
		return nil, err
	}

	r.state.Yards[y.ID] = y
	owner.OwnedYards.Add(y.ID)
	r.touch()
	return y.Clone(), nil
}

// GetYard returns a copy of the yard.
func (r *Repository) GetYard(id string) (*domain.PetYard, error) {
	y, err := r.yard(id)
	if err != nil {
		return nil, err
	}
	return y.Clone(), nil
}

// ListYards returns copies of every yard.
func (r *Repository) ListYards() []*domain.PetYard {
	out := make([]*domain.PetYard, 0, len(r.state.Yards))
	for _, y := range r.state.Yards {
		out = append(out, y.Clone())
	}
	return out
}

// ReplaceYard stores y in place of the yard with the same id.
// Owner, Members and Pets are relationship fields and are kept from the
// stored record.
func (r *Repository) ReplaceYard(y *domain.PetYard) (*domain.PetYard, error) {
	cur, err := r.yard(y.ID)
	if err != nil {
		return nil, err
	}
	if err := y.Validate(); err != nil {
		return nil, err
	}

	next := y.Clone()
	next.Owner = cur.Owner
	next.Members = cur.Members
	next.Pets = cur.Pets
	r.state.Yards[next.ID] = next
	r.touch()
	return next.Clone(), nil
}

// UpdateYard applies patch to the stored yard.
func (r *Repository) UpdateYard(id string, patch YardPatch) (*domain.PetYard, error) {
	cur, err := r.yard(id)
	if err != nil {
		return nil, err
	}

	next := cur.Clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Image != nil {
		next.Image = *patch.Image
	}
	return r.ReplaceYard(next)
}

// DeleteYard removes a yard. Every member (owner included) loses the yard
// from their yard sets and every contained pet has its yard cleared.
func (r *Repository) DeleteYard(id string) error {
	if _, err := r.yard(id); err != nil {
		return err
	}
	r.deleteYard(id)
	return nil
}

// AddMember adds userID to the yard's members. Adding the owner or an
// existing member changes nothing.
func (r *Repository) AddMember(yardID, userID string) (*domain.PetYard, error) {
	y, err := r.yard(yardID)
	if err != nil {
		return nil, err
	}
	u, err := r.user(userID)
	if err != nil {
		return nil, err
	}

	if userID != y.Owner {
		added := y.Members.Add(userID)
		if u.JoinedYards.Add(yardID) || added {
			r.touch()
		}
	}
	return y.Clone(), nil
}

// RemoveMember removes userID from the yard's members. Removing the owner
// or a non-member changes nothing.
func (r *Repository) RemoveMember(yardID, userID string) (*domain.PetYard, error) {
	y, err := r.yard(yardID)
	if err != nil {
		return nil, err
	}

	if userID != y.Owner {
		changed := y.Members.Remove(userID)
		if u, ok := r.state.Users[userID]; ok && u.JoinedYards.Remove(yardID) {
			changed = true
		}
		if changed {
			r.touch()
		}
	}
	return y.Clone(), nil
}

// AddPetToYard places a pet in the yard, moving it out of any other yard.
func (r *Repository) AddPetToYard(yardID, petID string) (*domain.PetYard, error) {
	y, err := r.yard(yardID)
	if err != nil {
		return nil, err
	}
	p, err := r.pet(petID)
	if err != nil {
		return nil, err
	}

	r.moveTo(p, y)
	return y.Clone(), nil
}

// RemovePetFromYard takes a pet out of the yard. A pet that is not in
// this yard is left where it is.
func (r *Repository) RemovePetFromYard(yardID, petID string) (*domain.PetYard, error) {
	y, err := r.yard(yardID)
	if err != nil {
		return nil, err
	}
	p, err := r.pet(petID)
	if err != nil {
		return nil, err
	}

	changed := y.Pets.Remove(petID)
	if p.Yard == yardID {
		p.Yard = ""
		changed = true
	}
	if changed {
		r.touch()
	}
	return y.Clone(), nil
}

// CheckYardOwner returns ErrForbidden unless userID owns the yard.
func (r *Repository) CheckYardOwner(userID, yardID string) error {
	y, err := r.yard(yardID)
	if err != nil {
		return err
	}
	if y.Owner != userID {
		return domain.ErrForbidden.WithDetails("pet yard " + yardID)
	}
	return nil
}

// CheckYardMember returns ErrForbidden unless userID owns or belongs to the yard.
func (r *Repository) CheckYardMember(userID, yardID string) error {
	y, err := r.yard(yardID)
	if err != nil {
		return err
	}
	if !y.IsMember(userID) {
		return domain.ErrForbidden.WithDetails("pet yard " + yardID)
	}
	return nil
}

func (r *Repository) deleteYard(id string) {
	y, ok := r.state.Yards[id]
	if !ok {
		return
	}
	for _, memberID := range y.AllMembers() {
		if u, ok := r.state.Users[memberID]; ok {
			u.OwnedYards.Remove(id)
			u.JoinedYards.Remove(id)
		}
	}
	for _, petID := range y.Pets {
		if p, ok := r.state.Pets[petID]; ok && p.Yard == id {
			p.Yard = ""
		}
	}
	delete(r.state.Yards, id)
	r.touch()
}
