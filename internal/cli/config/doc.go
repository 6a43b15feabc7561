// Package config defines the tokengate-cli configuration file.
//
// The file lives at ~/.tokengate/cli.yaml by default and stores the
// server address, admin API key, and output preferences so they do not
// have to be repeated on every invocation. Command-line flags and
// TOKENGATE_* environment variables take precedence over the file.
package config
