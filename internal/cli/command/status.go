package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gettokengate/tokengate/internal/cli/connection"
	"github.com/gettokengate/tokengate/internal/cli/output"
)

// statusSummary mirrors the admin API's status summary.
type statusSummary struct {
	Version       string `json:"version" yaml:"version"`
	Commit        string `json:"commit" yaml:"commit"`
	Backend       string `json:"backend" yaml:"backend"`
	TokensStored  int    `json:"tokens_stored" yaml:"tokens_stored"`
	UptimeSeconds int64  `json:"uptime_seconds" yaml:"uptime_seconds"`
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the server's status summary",
		Action: statusShow,
	}
}

func statusShow(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/admin/v1/status/summary")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var summary statusSummary
	if err := connection.ParseResponse(resp, &summary); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	formatter := output.NewFormatter(output.Format(flags.Output))
	return formatter.Format(os.Stdout, &summary)
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server liveness and readiness",
		Action: healthCheck,
	}
}

func healthCheck(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	for _, endpoint := range []string{"/health", "/ready"} {
		resp, err := client.Get(ctx, endpoint)
		if err != nil {
			return fmt.Errorf("%s: %w", endpoint, err)
		}
		if err := connection.ParseResponse(resp, nil); err != nil {
			return fmt.Errorf("%s: %w", endpoint, err)
		}
		fmt.Printf("%s: ok\n", endpoint)
	}

	return nil
}
