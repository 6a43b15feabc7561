// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:8080"
	DefaultDispatchPath = "/goto.php"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	DefaultSessionTTL = 2 * time.Hour
	DefaultCookieName = "tokengate_session"

	DefaultBackend = "memory"
	DefaultDataDir = "/var/lib/tokengate-server/data"
	DefaultDSN     = "/var/lib/tokengate-server/tokengate.db"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				DispatchPath: DefaultDispatchPath,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
		},
		Session: SessionSection{
			TTL:        DefaultSessionTTL,
			CookieName: DefaultCookieName,
		},
		Storage: StorageSection{
			Backend: DefaultBackend,
			DataDir: DefaultDataDir,
			DSN:     DefaultDSN,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
