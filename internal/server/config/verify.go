// Package config defines the server configuration structure.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if !strings.HasPrefix(cfg.HTTP.DispatchPath, "/") {
		return fmt.Errorf("server.http.dispatch_path must start with /, got %q", cfg.HTTP.DispatchPath)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if cfg.HTTP.RateLimitRPS < 0 {
		return errors.New("server.http.rate_limit_rps must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case "memory":
	case "badger":
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required for the badger backend")
		}
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("cannot create data directory: %w", err)
		}
	case "sqlite":
		if cfg.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("storage.backend must be memory, badger or sqlite, got %q", cfg.Backend)
	}

	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return errors.New("storage.encryption_key must be hex encoded")
		}
		if len(key) != 32 {
			return fmt.Errorf("storage.encryption_key must decode to 32 bytes, got %d", len(key))
		}
	}

	return nil
}

func verifySession(cfg *SessionSection) error {
	if cfg.TTL < 0 {
		return errors.New("session.ttl must not be negative")
	}
	if cfg.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	return nil
}

// EncryptionKeyBytes decodes the configured encryption key. Returns
// nil when encryption is disabled.
func (s *StorageSection) EncryptionKeyBytes() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	return hex.DecodeString(s.EncryptionKey)
}
