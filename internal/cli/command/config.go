package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gettokengate/tokengate/internal/cli/config"
	"github.com/gettokengate/tokengate/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a config file from the current flags",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Target file (default: ~/.tokengate/cli.yaml)",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	view := map[string]string{
		"server":  flags.Server,
		"socket":  flags.Socket,
		"ca_cert": flags.CACert,
		"output":  flags.Output,
		"api_key": maskKey(flags.APIKey),
	}

	formatter := output.NewFormatter(output.Format(flags.Output))
	return formatter.Format(os.Stdout, view)
}

func configInit(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg := &config.CLIConfig{
		Server: flags.Server,
		APIKey: flags.APIKey,
		Socket: flags.Socket,
		CACert: flags.CACert,
		Output: flags.Output,
	}

	path := c.String("path")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "-"
	}
	if len(key) <= 6 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
