package service

import (
	"slices"
	"time"
)

// SweepNeglected deletes every pet that has not been fed or petted for
// longer than after, using the same cascade as DeletePet. It returns the
// removed ids in sorted order.
func (r *Repository) SweepNeglected(after time.Duration) []string {
	now := r.clock.Now()

	var victims []string
	for id, p := range r.state.Pets {
		if p.IsNeglected(now, after) {
			victims = append(victims, id)
		}
	}
	slices.Sort(victims)

	for _, id := range victims {
		r.deletePet(id)
	}
	return victims
}
