// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for tokengate-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Session SessionSection `koanf:"session"`
	Storage StorageSection `koanf:"storage"`
	Links   LinksSection   `koanf:"links"`
	Admin   AdminSection   `koanf:"admin"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// DispatchPath is the request path the login flow listens on.
	// Requests to any other path pass through untouched.
	DispatchPath string `koanf:"dispatch_path"`

	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RateLimit throttles requests per client IP. Zero disables it.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// SessionSection configures the session layer.
type SessionSection struct {
	TTL          time.Duration `koanf:"ttl"`
	CookieName   string        `koanf:"cookie_name"`
	CookieSecure bool          `koanf:"cookie_secure"`
}

// StorageSection configures the token and session stores.
type StorageSection struct {
	// Backend selects the token store: memory, badger or sqlite.
	Backend string `koanf:"backend"`

	// DataDir holds the badger database.
	DataDir string `koanf:"data_dir"`

	// DSN is the sqlite database path.
	DSN string `koanf:"dsn"`

	// EncryptionKey is a hex-encoded 32-byte key. When set, token
	// records are encrypted at rest in the badger backend.
	EncryptionKey string `koanf:"encryption_key"`

	// SyncWrites forces badger to fsync every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// LinksSection configures redirect URL resolution.
type LinksSection struct {
	// Template is the redirect URL pattern; {ref} is replaced with
	// the reference ID from the auth target.
	Template string `koanf:"template"`

	// Overrides pins individual ref IDs to fixed URLs.
	Overrides map[string]string `koanf:"overrides"`
}

// AdminSection configures the admin API.
type AdminSection struct {
	// APIKey guards the /admin/v1 endpoints. Empty disables them.
	APIKey string `koanf:"api_key"`

	// SocketPath serves the admin API on a Unix domain socket without
	// key authentication. Empty disables the socket.
	SocketPath string `koanf:"socket_path"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
