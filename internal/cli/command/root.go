package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gettokengate/tokengate/internal/cli/config"
	"github.com/gettokengate/tokengate/internal/cli/connection"
	"github.com/gettokengate/tokengate/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "tokengate-cli",
		Usage:   "TokenGate command-line management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			StatusCommand(),
			HealthCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata["config"] = cfg
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to CLI config file",
			EnvVars: []string{"TOKENGATE_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (e.g., localhost:8080)",
			EnvVars: []string{"TOKENGATE_SERVER"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "Admin API key for authentication",
			EnvVars: []string{"TOKENGATE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "Path to the server's local management socket",
			EnvVars: []string{"TOKENGATE_SOCKET"},
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "PEM bundle to trust for servers with a private CA",
			EnvVars: []string{"TOKENGATE_CA_CERT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
	}
}

// GlobalFlags holds flag values merged with the CLI config file.
type GlobalFlags struct {
	Server string
	APIKey string
	Socket string
	CACert string
	Output string
}

// ParseGlobalFlags merges flags over the loaded config file.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg := loadedConfig(c)

	flags := &GlobalFlags{
		Server: cfg.Server,
		APIKey: cfg.APIKey,
		Socket: cfg.Socket,
		CACert: cfg.CACert,
		Output: cfg.Output,
	}

	if v := c.String("server"); v != "" {
		flags.Server = v
	}
	if v := c.String("api-key"); v != "" {
		flags.APIKey = v
	}
	if v := c.String("socket"); v != "" {
		flags.Socket = v
	}
	if v := c.String("ca-cert"); v != "" {
		flags.CACert = v
	}
	if v := c.String("output"); v != "" {
		flags.Output = v
	}

	return flags
}

// loadedConfig returns the CLI config stored by the Before hook.
func loadedConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata["config"].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// EnsureConnected builds the admin API client from the merged flags.
func EnsureConnected(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)

	var opts []connection.Option
	if flags.Socket != "" {
		opts = append(opts, connection.WithUnixSocket(flags.Socket))
	} else if flags.CACert != "" {
		opts = append(opts, connection.WithCACert(flags.CACert))
	}

	return connection.NewClient(flags.Server, flags.APIKey, opts...)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
