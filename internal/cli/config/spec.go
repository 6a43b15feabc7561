package config

// CLIConfig is the configuration for tokengate-cli.
type CLIConfig struct {
	// Server is the admin API base address.
	Server string `yaml:"server"`

	// APIKey authenticates against the admin API. Stored in a file
	// readable only by the owner.
	APIKey string `yaml:"api_key"`

	// Socket, when set, routes requests through the server's local
	// management socket instead of TCP.
	Socket string `yaml:"socket"`

	// CACert is a PEM bundle to trust for HTTPS servers with a
	// private CA.
	CACert string `yaml:"ca_cert"`

	// Output is the default output format: table, json or yaml.
	Output string `yaml:"output"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://127.0.0.1:8080",
		Output: "table",
	}
}
