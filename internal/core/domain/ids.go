package domain

import (
	"slices"

	"github.com/google/uuid"
)

// NewID returns a random identifier rendered as canonical UUID text.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether id parses as a UUID.
func IsValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// IDSet is an insertion-ordered set of entity ids.
// The zero value is an empty set ready to use.
type IDSet []string

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Add inserts id if absent. Reports whether the set changed.
func (s *IDSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id if present. Reports whether the set changed.
func (s *IDSet) Remove(id string) bool {
	i := slices.Index(*s, id)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// Clone returns an independent copy. A nil set clones to an empty one.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}
