package command

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/internal/server/config"
)

// TokensCommand returns the tokens subcommand group.
func TokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "Session tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "purge",
				Usage: "Remove expired tokens and rewrite the snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "Count expired tokens without removing them"},
				},
				Action: tokensPurge,
			},
		},
	}
}

// SweepCommand returns the sweep subcommand group.
func SweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Neglected-pet sweep",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one neglect sweep and rewrite the snapshot",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "neglect-after",
						Usage: "Override sweep.neglect_after",
					},
					&cli.BoolFlag{Name: "dry-run", Usage: "List neglected pets without removing them"},
				},
				Action: sweepRun,
			},
		},
	}
}

type purgeResult struct {
	Expired int  `json:"expired"`
	Removed int  `json:"removed"`
	DryRun  bool `json:"dry_run"`
}

func tokensPurge(c *cli.Context) (err error) {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(c.Context); err == nil {
			err = cerr
		}
	}()

	res := purgeResult{DryRun: c.Bool("dry-run")}
	if res.DryRun {
		err = s.engine.View(c.Context, func(r *service.Repository) error {
			now := r.Now()
			for _, t := range r.State().Tokens {
				if !t.IsValid(now) {
					res.Expired++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		return render(c, res)
	}

	err = s.engine.Update(c.Context, func(r *service.Repository) error {
		res.Removed = r.Tokens().PurgeExpired()
		res.Expired = res.Removed
		return nil
	})
	if err != nil {
		return err
	}
	err = withSpinner(c, "writing snapshot", func() error {
		return s.engine.Persist(c.Context)
	})
	if err != nil {
		return err
	}
	return render(c, res)
}

type sweptPet struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Owner    string    `json:"owner"`
	LastCare time.Time `json:"last_care" table:"LAST CARE"`
	Removed  bool      `json:"removed"`
}

func sweepRun(c *cli.Context) (err error) {
	var adjust []func(*config.ServerConfig)
	if c.IsSet("neglect-after") {
		after := c.Duration("neglect-after")
		if after <= 0 {
			return fmt.Errorf("--neglect-after must be positive")
		}
		adjust = append(adjust, func(cfg *config.ServerConfig) { cfg.Sweep.NeglectAfter = after })
	}

	s, err := openSession(c, adjust...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(c.Context); err == nil {
			err = cerr
		}
	}()

	after := s.cfg.Sweep.NeglectAfter
	candidates := []sweptPet{}
	err = s.engine.View(c.Context, func(r *service.Repository) error {
		now := r.Now()
		for _, p := range r.ListPets() {
			if p.IsNeglected(now, after) {
				candidates = append(candidates, sweptPet{
					ID:       p.ID,
					Name:     p.Name,
					Owner:    p.Owner,
					LastCare: p.LastCare().UTC(),
				})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if c.Bool("dry-run") {
		return render(c, sortSwept(candidates))
	}

	var removed []string
	err = withSpinner(c, "sweeping neglected pets", func() error {
		var err error
		removed, err = s.engine.Sweep(c.Context)
		return err
	})
	if err != nil {
		return err
	}

	// A pet cared for between the two gate sections is not removed.
	gone := make(map[string]bool, len(removed))
	for _, id := range removed {
		gone[id] = true
	}
	for i := range candidates {
		candidates[i].Removed = gone[candidates[i].ID]
	}
	return render(c, sortSwept(candidates))
}

func sortSwept(pets []sweptPet) []sweptPet {
	slices.SortFunc(pets, func(a, b sweptPet) int { return cmp.Compare(a.ID, b.ID) })
	return pets
}
