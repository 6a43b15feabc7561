// Package main provides the entry point for tokengate-server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gettokengate/tokengate/internal/core/service"
	"github.com/gettokengate/tokengate/internal/infra/buildinfo"
	"github.com/gettokengate/tokengate/internal/infra/confloader"
	"github.com/gettokengate/tokengate/internal/infra/shutdown"
	"github.com/gettokengate/tokengate/internal/links"
	"github.com/gettokengate/tokengate/internal/server/config"
	"github.com/gettokengate/tokengate/internal/server/httpserver"
	"github.com/gettokengate/tokengate/internal/server/httpserver/handler"
	"github.com/gettokengate/tokengate/internal/server/localserver"
	"github.com/gettokengate/tokengate/internal/storage"
	"github.com/gettokengate/tokengate/internal/storage/badgerstore"
	"github.com/gettokengate/tokengate/internal/storage/gormstore"
	"github.com/gettokengate/tokengate/internal/storage/memory"
	"github.com/gettokengate/tokengate/internal/telemetry/logger"
	"github.com/gettokengate/tokengate/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tokengate-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	log.Info("starting tokengate-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", *configFile,
		"backend", cfg.Storage.Backend)

	metrics := metric.New()

	tokens, sessions, err := initStorage(cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	resolver, err := initResolver(cfg)
	if err != nil {
		return fmt.Errorf("init links: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepSessions(sweepCtx, sessions, log)

	sessionSvc := service.NewSessionService(sessions, cfg.Session.TTL, log)
	loginSvc := service.NewLoginService(tokens, sessionSvc, resolver, log)

	h := handler.New(handler.Config{
		DispatchPath: cfg.Server.HTTP.DispatchPath,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		SessionTTL:   cfg.Session.TTL,
		Backend:      cfg.Storage.Backend,
	}, loginSvc, sessionSvc, tokens, metrics, log)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler:        h,
		DispatchPath:   cfg.Server.HTTP.DispatchPath,
		AdminAPIKey:    cfg.Admin.APIKey,
		Metrics:        metrics,
		Logger:         log,
		RateLimitRPS:   cfg.Server.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.Server.HTTP.RateLimitBurst,
	})

	httpServer, err := httpserver.New(cfg.Server.HTTP.Addr, router, httpserver.Options{
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		TLSCertFile:  cfg.Server.HTTP.TLSCertFile,
		TLSKeyFile:   cfg.Server.HTTP.TLSKeyFile,
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing token store")
		stopSweep()
		return tokens.Close()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if cfg.Admin.SocketPath != "" {
		local := localserver.New(cfg.Admin.SocketPath, httpserver.NewLocalRouter(h, log))
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down local management socket")
			return local.Shutdown(ctx)
		})
		go func() {
			log.Info("local management socket listening", "path", cfg.Admin.SocketPath)
			if err := local.ListenAndServe(); err != nil {
				log.Error("local server error", "error", err)
			}
		}()
	}

	if *configFile != "" {
		if err := watchConfig(*configFile, log, shutdownHandler); err != nil {
			log.Warn("config watcher unavailable", "error", err)
		}
	}

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", cfg.Server.HTTP.TLSCertFile != "",
			"dispatch_path", cfg.Server.HTTP.DispatchPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("server started")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initStorage builds the token and session stores for the configured
// backend. Sessions always live in memory: they guard a single login
// hop and need not survive a restart.
func initStorage(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Metrics) (storage.TokenRepository, *memory.SessionStore, error) {
	sessions := memory.NewSessionStore()

	switch cfg.Storage.Backend {
	case "memory":
		return memory.NewTokenStore(), sessions, nil

	case "badger":
		key, err := cfg.Storage.EncryptionKeyBytes()
		if err != nil {
			return nil, nil, err
		}
		store, err := badgerstore.New(badgerstore.Config{
			Dir:           cfg.Storage.DataDir,
			EncryptionKey: key,
			SyncWrites:    cfg.Storage.SyncWrites,
			Logger:        log,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := metrics.Register(store); err != nil {
			log.Warn("badger metrics registration failed", "error", err)
		}
		return store, sessions, nil

	case "sqlite":
		store, err := gormstore.New(gormstore.Config{
			DSN:    cfg.Storage.DSN,
			Logger: log,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, sessions, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// initResolver builds the redirect URL resolver.
func initResolver(cfg *config.ServerConfig) (links.Resolver, error) {
	template, err := links.NewTemplateResolver(cfg.Links.Template)
	if err != nil {
		return nil, err
	}
	if len(cfg.Links.Overrides) == 0 {
		return template, nil
	}
	return links.NewStaticResolver(cfg.Links.Overrides, template), nil
}

// sweepSessions drops expired sessions on a fixed interval so the
// in-memory store does not grow without bound.
func sweepSessions(ctx context.Context, sessions *memory.SessionStore, log *slog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ctx); n > 0 {
				log.Debug("swept expired sessions", "count", n)
			}
		}
	}
}

// watchConfig reloads the log level when the config file changes.
func watchConfig(configFile string, log *slog.Logger, sh *shutdown.Handler) error {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Error("config reload failed", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level applied from config", "level", cfg.Log.Level)
	})

	watcher.StartAsync()
	sh.OnShutdown(func(ctx context.Context) error {
		return watcher.Stop()
	})
	return nil
}
