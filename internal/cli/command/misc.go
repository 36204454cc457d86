package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/petyard-go/internal/infra/buildinfo"
	"github.com/yndnr/petyard-go/pkg/token"
)

// KeygenCommand prints a key suitable for messaging.key.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Print a random base64 key for messaging.key",
		Action: func(c *cli.Context) error {
			key, err := token.GenerateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			_, err = fmt.Fprintln(c.App.Writer, key)
			return err
		},
	}
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return render(c, buildinfo.Get())
		},
	}
}
