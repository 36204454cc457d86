package domain

import "strings"

// MaxYardNameLength bounds PetYard.Name.
const MaxYardNameLength = 64

// PetYard groups pets and member users under one owner.
type PetYard struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image uint64 `json:"image"`
	Owner string `json:"owner"`

	// Members excludes the owner, whose membership is implicit.
	Members IDSet `json:"members"`

	// Pets lists the ids of pets whose Yard field points here.
	Pets IDSet `json:"pets"`
}

// NewPetYard creates an empty yard owned by owner.
func NewPetYard(owner, name string, image uint64) *PetYard {
	return &PetYard{
		ID:      NewID(),
		Name:    name,
		Image:   image,
		Owner:   owner,
		Members: IDSet{},
		Pets:    IDSet{},
	}
}

// Validate checks the yard's editable fields.
func (y *PetYard) Validate() error {
	var violations []string
	if y.Name == "" {
		violations = append(violations, "name is required")
	}
	if len(y.Name) > MaxYardNameLength {
		violations = append(violations, "name exceeds 64 characters")
	}
	if len(violations) > 0 {
		return ErrYardValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// AllMembers returns the stored members followed by the owner.
func (y *PetYard) AllMembers() []string {
	out := make([]string, 0, len(y.Members)+1)
	out = append(out, y.Members...)
	return append(out, y.Owner)
}

// IsMember reports whether userID is the owner or a stored member.
func (y *PetYard) IsMember(userID string) bool {
	return userID == y.Owner || y.Members.Contains(userID)
}

// Clone creates a deep copy of the yard.
func (y *PetYard) Clone() *PetYard {
	clone := *y
	clone.Members = y.Members.Clone()
	clone.Pets = y.Pets.Clone()
	return &clone
}

// PublicYard is the view of a yard served without authentication.
type PublicYard struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Image   uint64 `json:"image"`
	Owner   string `json:"owner"`
	Members IDSet  `json:"members"`
	Pets    IDSet  `json:"pets"`
}

// Public returns the public view of the yard.
func (y *PetYard) Public() PublicYard {
	return PublicYard{
		ID:      y.ID,
		Name:    y.Name,
		Image:   y.Image,
		Owner:   y.Owner,
		Members: y.Members.Clone(),
		Pets:    y.Pets.Clone(),
	}
}
