package command

import (
	"cmp"
	"slices"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
)

// UsersCommand returns the users subcommand group.
func UsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "User accounts",
		Subcommands: []*cli.Command{
			{Name: "list", Aliases: []string{"ls"}, Usage: "List users", Action: usersList},
		},
	}
}

// PetsCommand returns the pets subcommand group.
func PetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "pets",
		Usage: "Pets",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List pets with their care status",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Usage: "Only pets of this username or user id"},
				},
				Action: petsList,
			},
		},
	}
}

// YardsCommand returns the yards subcommand group.
func YardsCommand() *cli.Command {
	return &cli.Command{
		Name:    "yards",
		Aliases: []string{"pet_yards"},
		Usage:   "Pet yards",
		Subcommands: []*cli.Command{
			{Name: "list", Aliases: []string{"ls"}, Usage: "List pet yards", Action: yardsList},
		},
	}
}

type userRow struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at" table:"CREATED"`
	Pets        int       `json:"pets"`
	OwnedYards  int       `json:"owned_yards" table:"OWNED YARDS,wide"`
	JoinedYards int       `json:"joined_yards" table:"JOINED YARDS,wide"`
	Chats       int       `json:"chats" table:"CHATS,wide"`
}

type petRow struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Species    string        `json:"species"`
	Owner      string        `json:"owner"`
	Yard       string        `json:"yard,omitempty"`
	Level      uint64        `json:"level"`
	Experience uint8         `json:"experience" table:"XP"`
	Hunger     domain.Hunger `json:"hunger"`
	Mood       domain.Mood   `json:"mood"`
	LastFed    time.Time     `json:"last_fed" table:"LAST FED,wide"`
	LastPet    time.Time     `json:"last_pet" table:"LAST PET,wide"`
}

type yardRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Members int    `json:"members"`
	Pets    int    `json:"pets"`
	Image   uint64 `json:"image" table:"IMAGE,wide"`
}

// view opens a session, runs fn under the read gate and closes again.
func view(c *cli.Context, fn func(*service.Repository) error) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	err = s.engine.View(c.Context, fn)
	if cerr := s.Close(c.Context); err == nil {
		err = cerr
	}
	return err
}

func usersList(c *cli.Context) error {
	rows := []userRow{}
	err := view(c, func(r *service.Repository) error {
		for _, u := range r.ListUsers() {
			rows = append(rows, userRow{
				ID:          u.ID,
				Username:    u.Username,
				Email:       u.Email,
				CreatedAt:   time.UnixMilli(u.CreatedAt).UTC(),
				Pets:        len(u.Pets),
				OwnedYards:  len(u.OwnedYards),
				JoinedYards: len(u.JoinedYards),
				Chats:       len(u.ChatLogs),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortFunc(rows, func(a, b userRow) int { return cmp.Compare(a.Username, b.Username) })
	return render(c, rows)
}

func petsList(c *cli.Context) error {
	owner := c.String("owner")

	rows := []petRow{}
	err := view(c, func(r *service.Repository) error {
		ownerID := owner
		if owner != "" {
			if u, err := r.FindUserByUsername(owner); err == nil {
				ownerID = u.ID
			}
		}
		now := r.Now()
		for _, p := range r.ListPets() {
			if ownerID != "" && p.Owner != ownerID {
				continue
			}
			rows = append(rows, petRow{
				ID:         p.ID,
				Name:       p.Name,
				Species:    p.Species,
				Owner:      p.Owner,
				Yard:       p.Yard,
				Level:      p.Level,
				Experience: p.Experience,
				Hunger:     p.Hunger(now),
				Mood:       p.Mood(now),
				LastFed:    time.UnixMilli(p.LastFed).UTC(),
				LastPet:    time.UnixMilli(p.LastPet).UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortFunc(rows, func(a, b petRow) int {
		return cmp.Or(cmp.Compare(a.Owner, b.Owner), cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return render(c, rows)
}

func yardsList(c *cli.Context) error {
	rows := []yardRow{}
	err := view(c, func(r *service.Repository) error {
		for _, y := range r.ListYards() {
			rows = append(rows, yardRow{
				ID:      y.ID,
				Name:    y.Name,
				Owner:   y.Owner,
				Members: len(y.Members),
				Pets:    len(y.Pets),
				Image:   y.Image,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortFunc(rows, func(a, b yardRow) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return render(c, rows)
}
