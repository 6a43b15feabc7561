package command

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gettokengate/tokengate/internal/cli/connection"
	"github.com/gettokengate/tokengate/internal/cli/output"
)

// tokenRecord mirrors the admin API's token representation.
type tokenRecord struct {
	UserID  string `json:"user_id" yaml:"user_id"`
	Token   string `json:"token" yaml:"token"`
	Expires string `json:"expires" yaml:"expires"`
}

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Manage stored one-time login tokens",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Store or replace the token for a user",
				ArgsUsage: "USER_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Usage:    "Token value",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Value: 5 * time.Minute,
						Usage: "Token lifetime (e.g., 5m, 1h)",
					},
					&cli.StringFlag{
						Name:  "expires",
						Usage: "Absolute expiry as an RFC3339 timestamp (overrides --ttl)",
					},
				},
				Action: tokenPut,
			},
			{
				Name:      "get",
				Usage:     "Show the stored token for a user",
				ArgsUsage: "USER_ID",
				Action:    tokenGet,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete the stored token for a user",
				ArgsUsage: "USER_ID",
				Action:    tokenDelete,
			},
		},
	}
}

func tokenPut(c *cli.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	expires := c.String("expires")
	if expires == "" {
		expires = time.Now().Add(c.Duration("ttl")).UTC().Format(time.RFC3339)
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	body := map[string]string{
		"token":   c.String("token"),
		"expires": expires,
	}
	resp, err := client.Put(ctx, tokenPath(userID), body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var record tokenRecord
	if err := connection.ParseResponse(resp, &record); err != nil {
		return err
	}

	return outputRecord(c, &record)
}

func tokenGet(c *cli.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	resp, err := client.Get(ctx, tokenPath(userID))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var record tokenRecord
	if err := connection.ParseResponse(resp, &record); err != nil {
		return err
	}

	return outputRecord(c, &record)
}

func tokenDelete(c *cli.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	resp, err := client.Delete(ctx, tokenPath(userID))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Printf("Token for user %s deleted\n", userID)
	return nil
}

func requireUserID(c *cli.Context) (string, error) {
	userID := c.Args().First()
	if userID == "" {
		return "", fmt.Errorf("USER_ID argument is required")
	}
	return userID, nil
}

func tokenPath(userID string) string {
	return "/admin/v1/tokens/" + url.PathEscape(userID)
}

func outputRecord(c *cli.Context, record *tokenRecord) error {
	flags := ParseGlobalFlags(c)
	formatter := output.NewFormatter(output.Format(flags.Output))
	return formatter.Format(os.Stdout, record)
}
