package domain

import (
	"strings"
	"time"
)

// Pet constants.
const (
	// ExperiencePerLevel is the experience at which a pet levels up.
	ExperiencePerLevel = 100

	MaxPetNameLength = 64
	MaxSpeciesLength = 32

	// CareWarnAfter and CareCriticalAfter bound the hunger and mood bands.
	CareWarnAfter     = 24 * time.Hour
	CareCriticalAfter = 48 * time.Hour
)

// Pet is a creature owned by exactly one user.
type Pet struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Image   uint64 `json:"image"`
	Species string `json:"species"`

	// Level starts at 1 and only grows.
	Level uint64 `json:"level"`

	// Experience accumulates toward the next level and resets on level-up.
	Experience uint8 `json:"experience"`

	// Yard is the id of the yard holding this pet, empty when unplaced.
	// It is a back-reference, never an ownership edge.
	Yard string `json:"yard,omitempty"`

	// LastFed and LastPet are care timestamps (Unix milliseconds).
	LastFed int64 `json:"last_fed"`
	LastPet int64 `json:"last_pet"`
}

// NewPet creates a level-1 pet owned by owner.
func NewPet(owner, name, species string, image uint64, now time.Time) *Pet {
	ms := now.UnixMilli()
	return &Pet{
		ID:      NewID(),
		Owner:   owner,
		Name:    name,
		Image:   image,
		Species: species,
		Level:   1,
		LastFed: ms,
		LastPet: ms,
	}
}

// Validate checks the pet's editable fields.
func (p *Pet) Validate() error {
	var violations []string

	if p.Name == "" {
		violations = append(violations, "name is required")
	}
	if len(p.Name) > MaxPetNameLength {
		violations = append(violations, "name exceeds 64 characters")
	}
	if len(p.Species) > MaxSpeciesLength {
		violations = append(violations, "species exceeds 32 characters")
	}

	if len(violations) > 0 {
		return ErrPetValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// HasYard reports whether the pet is placed in a yard.
func (p *Pet) HasYard() bool {
	return p.Yard != ""
}

// AddExperience adds points. Reaching ExperiencePerLevel raises the level
// by one and resets experience to zero; surplus points are dropped.
// Reports whether the pet leveled up.
func (p *Pet) AddExperience(points uint8) bool {
	total := uint16(p.Experience) + uint16(points)
	if total >= ExperiencePerLevel {
		p.Level++
		p.Experience = 0
		return true
	}
	p.Experience = uint8(total)
	return false
}

// LastCare returns the most recent of LastFed and LastPet.
func (p *Pet) LastCare() time.Time {
	return time.UnixMilli(max(p.LastFed, p.LastPet))
}

// IsNeglected reports whether the pet has gone longer than after without
// being fed or petted.
func (p *Pet) IsNeglected(now time.Time, after time.Duration) bool {
	return now.Sub(p.LastCare()) > after
}

// Hunger is the pet's stomach status derived from LastFed.
type Hunger string

const (
	HungerSatiated Hunger = "satiated"
	HungerHungry   Hunger = "hungry"
	HungerStarving Hunger = "starving"
)

// Hunger derives the stomach status at now.
func (p *Pet) Hunger(now time.Time) Hunger {
	switch since := now.Sub(time.UnixMilli(p.LastFed)); {
	case since < CareWarnAfter:
		return HungerSatiated
	case since < CareCriticalAfter:
		return HungerHungry
	default:
		return HungerStarving
	}
}

// Mood is the pet's happiness status derived from LastPet.
type Mood string

const (
	MoodJoyful    Mood = "joyful"
	MoodNeglected Mood = "neglected"
	MoodDepressed Mood = "depressed"
)

// Mood derives the happiness status at now.
func (p *Pet) Mood(now time.Time) Mood {
	switch since := now.Sub(time.UnixMilli(p.LastPet)); {
	case since < CareWarnAfter:
		return MoodJoyful
	case since < CareCriticalAfter:
		return MoodNeglected
	default:
		return MoodDepressed
	}
}

// Clone creates a copy of the pet.
func (p *Pet) Clone() *Pet {
	clone := *p
	return &clone
}

// PublicPet is the pet view served without authentication.
type PublicPet struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Image   uint64 `json:"image"`
	Species string `json:"species"`
	Level   uint64 `json:"level"`
	Yard    string `json:"yard,omitempty"`
	Hunger  Hunger `json:"hunger"`
	Mood    Mood   `json:"mood"`
}

// Public returns the public view of the pet at now.
func (p *Pet) Public(now time.Time) PublicPet {
	return PublicPet{
		ID:      p.ID,
		Owner:   p.Owner,
		Name:    p.Name,
		Image:   p.Image,
		Species: p.Species,
		Level:   p.Level,
		Yard:    p.Yard,
		Hunger:  p.Hunger(now),
		Mood:    p.Mood(now),
	}
}
