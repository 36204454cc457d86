package service

import (
	"errors"
	"fmt"
	"sort"
)

// CheckIntegrity walks every id reference in the state and reports each
// broken one. A nil result means all relations are symmetric and no id
// dangles.
func (r *Repository) CheckIntegrity() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	s := r.state

	for id, p := range s.Pets {
		owner, ok := s.Users[p.Owner]
		switch {
		case !ok:
			report("pet %s: owner %s does not exist", id, p.Owner)
		case !owner.Pets.Contains(id):
			report("pet %s: missing from owner %s pet set", id, p.Owner)
		}
		if p.HasYard() {
			y, ok := s.Yards[p.Yard]
			switch {
			case !ok:
				report("pet %s: yard %s does not exist", id, p.Yard)
			case !y.Pets.Contains(id):
				report("pet %s: missing from yard %s pet set", id, p.Yard)
			}
		}
	}

	for id, y := range s.Yards {
		owner, ok := s.Users[y.Owner]
		switch {
		case !ok:
			report("yard %s: owner %s does not exist", id, y.Owner)
		case !owner.OwnedYards.Contains(id):
			report("yard %s: missing from owner %s owned set", id, y.Owner)
		}
		for _, petID := range y.Pets {
			p, ok := s.Pets[petID]
			if !ok || p.Yard != id {
				report("yard %s: pet %s does not point back", id, petID)
			}
		}
		for _, memberID := range y.Members {
			u, ok := s.Users[memberID]
			if !ok || !u.JoinedYards.Contains(id) {
				report("yard %s: member %s does not point back", id, memberID)
			}
		}
	}

	for id, u := range s.Users {
		for _, petID := range u.Pets {
			if p, ok := s.Pets[petID]; !ok || p.Owner != id {
				report("user %s: pet %s does not point back", id, petID)
			}
		}
		for _, yardID := range u.OwnedYards {
			if y, ok := s.Yards[yardID]; !ok || y.Owner != id {
				report("user %s: owned yard %s does not point back", id, yardID)
			}
		}
		for _, yardID := range u.JoinedYards {
			if y, ok := s.Yards[yardID]; !ok || !y.Members.Contains(id) {
				report("user %s: joined yard %s does not point back", id, yardID)
			}
		}
	}

	for value, t := range s.Tokens {
		if _, ok := s.Users[t.UserID]; !ok {
			report("token %.8s: user %s does not exist", value, t.UserID)
		}
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}
