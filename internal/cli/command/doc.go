// Package command provides CLI command definitions for tokengate-cli.
//
// Commands map onto the server's admin API:
//
//   - token put/get/delete: manage stored one-time login tokens
//   - status: show the server's status summary
//   - health: check server liveness and readiness
//   - config: inspect and initialize the CLI configuration file
//
// Connection settings come from flags, TOKENGATE_* environment
// variables, or the CLI config file, in that order of precedence.
package command
