package domain

// State is the complete contents of the store: four maps keyed by id
// (tokens by token string). It is the unit of snapshotting.
type State struct {
	Users  map[string]*User    `json:"users"`
	Pets   map[string]*Pet     `json:"pets"`
	Yards  map[string]*PetYard `json:"pet_yards"`
	Tokens TokenTable          `json:"tokens"`
}

// NewState returns a State with four empty maps.
func NewState() *State {
	return &State{
		Users:  make(map[string]*User),
		Pets:   make(map[string]*Pet),
		Yards:  make(map[string]*PetYard),
		Tokens: make(TokenTable),
	}
}

// Normalize replaces nil maps and relation sets with empty ones.
// Decoded snapshots may omit empty collections.
func (s *State) Normalize() {
	if s.Users == nil {
		s.Users = make(map[string]*User)
	}
	if s.Pets == nil {
		s.Pets = make(map[string]*Pet)
	}
	if s.Yards == nil {
		s.Yards = make(map[string]*PetYard)
	}
	if s.Tokens == nil {
		s.Tokens = make(TokenTable)
	}
	for _, u := range s.Users {
		if u.Pets == nil {
			u.Pets = IDSet{}
		}
		if u.OwnedYards == nil {
			u.OwnedYards = IDSet{}
		}
		if u.JoinedYards == nil {
			u.JoinedYards = IDSet{}
		}
		if u.ChatLogs == nil {
			u.ChatLogs = make(map[string][]DirectMessage)
		}
	}
	for _, y := range s.Yards {
		if y.Members == nil {
			y.Members = IDSet{}
		}
		if y.Pets == nil {
			y.Pets = IDSet{}
		}
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{
		Users:  make(map[string]*User, len(s.Users)),
		Pets:   make(map[string]*Pet, len(s.Pets)),
		Yards:  make(map[string]*PetYard, len(s.Yards)),
		Tokens: make(TokenTable, len(s.Tokens)),
	}
	for id, u := range s.Users {
		out.Users[id] = u.Clone()
	}
	for id, p := range s.Pets {
		out.Pets[id] = p.Clone()
	}
	for id, y := range s.Yards {
		out.Yards[id] = y.Clone()
	}
	for k, t := range s.Tokens {
		tc := *t
		out.Tokens[k] = &tc
	}
	return out
}

// Counts summarizes the size of each map.
type Counts struct {
	Users  int `json:"users"`
	Pets   int `json:"pets"`
	Yards  int `json:"pet_yards"`
	Tokens int `json:"tokens"`
}

// Counts returns the number of entries in each map.
func (s *State) Counts() Counts {
	return Counts{
		Users:  len(s.Users),
		Pets:   len(s.Pets),
		Yards:  len(s.Yards),
		Tokens: len(s.Tokens),
	}
}
