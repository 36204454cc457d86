package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/petyard-go/internal/cli/output"
	"github.com/yndnr/petyard-go/internal/infra/buildinfo"
	"github.com/yndnr/petyard-go/internal/infra/confloader"
	"github.com/yndnr/petyard-go/internal/server/bootstrap"
	"github.com/yndnr/petyard-go/internal/server/config"
	"github.com/yndnr/petyard-go/internal/storage"
	"github.com/yndnr/petyard-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "petyard-cli",
		Usage:   "Offline administration of a PetYard data store",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SnapshotCommand(),
			UsersCommand(),
			PetsCommand(),
			YardsCommand(),
			TokensCommand(),
			SweepCommand(),
			ConfigCommand(),
			KeygenCommand(),
			VersionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Server configuration file",
			EnvVars: []string{"PETYARD_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "ask-passphrase",
			Usage: "Prompt for the snapshot passphrase instead of reading storage.passphrase",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug output to stderr",
		},
	}
}

// readPassphrase prompts on the terminal without echo.
var readPassphrase = func(prompt string, w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("--ask-passphrase needs an interactive terminal")
	}
	fmt.Fprint(w, prompt)
	defer fmt.Fprintln(w)
	return term.ReadPassword(fd)
}

// loadConfig reads defaults, the --config file and PETYARD_ variables.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if c.Bool("ask-passphrase") {
		pass, err := readPassphrase("Snapshot passphrase: ", c.App.ErrWriter)
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		cfg.Storage.Passphrase = string(pass)
	}

	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr at warn, or debug with --verbose.
func newLogger(c *cli.Context) *slog.Logger {
	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "text", Output: c.App.ErrWriter})
	if err != nil {
		return slog.Default()
	}
	return log
}

// session is an opened store with its engine, ready for View and Update.
type session struct {
	cfg     *config.ServerConfig
	storage *bootstrap.Storage
	engine  *storage.Engine
}

// openSession loads the configuration, applies adjust and recovers the
// snapshot. The sweep loop is never started; maintenance commands sweep
// explicitly.
func openSession(c *cli.Context, adjust ...func(*config.ServerConfig)) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(cfg)
	}
	log := newLogger(c)

	st, err := bootstrap.OpenStorage(c.Context, &cfg.Storage, bootstrap.StorageOptions{Logger: log})
	if err != nil {
		return nil, err
	}

	cfg.Sweep.Enabled = false
	engine, err := bootstrap.NewEngine(cfg, st.Store, bootstrap.EngineOptions{Logger: log})
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := engine.Recover(c.Context); err != nil {
		st.Close()
		return nil, err
	}
	return &session{cfg: cfg, storage: st, engine: engine}, nil
}

// Close writes any pending change and releases the backend.
func (s *session) Close(ctx context.Context) error {
	err := s.engine.Close(ctx)
	if cerr := s.storage.Close(); err == nil {
		err = cerr
	}
	return err
}

// render writes data to stdout in the --output format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, data)
}

// withSpinner runs fn behind a spinner when stderr is a terminal.
func withSpinner(c *cli.Context, message string, fn func() error) error {
	f, ok := c.App.ErrWriter.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fn()
	}

	s := output.NewSpinner(f, message)
	s.Start()
	if err := fn(); err != nil {
		s.Fail(message + ": failed")
		return err
	}
	s.Success(message)
	return nil
}
