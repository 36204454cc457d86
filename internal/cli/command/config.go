package command

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/petyard-go/internal/cli/output"
	"github.com/yndnr/petyard-go/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Server configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Load and verify the configuration",
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	sanitized := reflect.ValueOf(*config.Sanitize(cfg))
	if format == output.FormatTable {
		table := &output.Table{Headers: []string{"KEY", "VALUE"}}
		walkSettings(sanitized, "", func(key string, val any) {
			table.AddRow(key, fmt.Sprint(val))
		})
		return table.Render(c.App.Writer)
	}

	tree := map[string]any{}
	walkSettings(sanitized, "", func(key string, val any) {
		node := tree
		parts := strings.Split(key, ".")
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	})
	return output.NewFormatter(format, false).Format(c.App.Writer, tree)
}

// walkSettings calls fn for every leaf of a config struct, keyed by the
// dotted koanf path, so the output can be pasted back into a config file.
func walkSettings(v reflect.Value, prefix string, fn func(key string, val any)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("koanf")
		if name == "" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		f := v.Field(i)
		switch {
		case f.Kind() == reflect.Struct:
			walkSettings(f, key, fn)
		case f.Type() == reflect.TypeOf(time.Duration(0)):
			fn(key, f.Interface().(time.Duration).String())
		default:
			fn(key, f.Interface())
		}
	}
}

func configValidate(c *cli.Context) error {
	if _, err := loadConfig(c); err != nil {
		return err
	}
	source := c.String("config")
	if source == "" {
		source = "defaults and environment"
	}
	_, err := fmt.Fprintf(c.App.Writer, "✓ configuration is valid (%s)\n", source)
	return err
}
