package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nicka06/monketer/internal/api"
	"github.com/nicka06/monketer/internal/config"
	"github.com/nicka06/monketer/internal/delivery"
	"github.com/nicka06/monketer/internal/generator"
	"github.com/nicka06/monketer/internal/metrics"
	"github.com/nicka06/monketer/internal/parser"
	"github.com/nicka06/monketer/internal/store"
	"github.com/nicka06/monketer/internal/template"
)

// App is the main application
type App struct {
	config        *config.Config
	db            *bolt.DB
	store         *store.Store
	apiServer     *api.Server
	metricsServer *metrics.Server
	collector     *metrics.Collector
	logger        *slog.Logger
}

// storeStats adapts the template store to the metrics collector.
type storeStats struct {
	store *store.Store
}

func (s storeStats) StorageStats(ctx context.Context) (metrics.StorageStats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return metrics.StorageStats{}, err
	}
	return metrics.StorageStats{Templates: st.Total, Snapshots: st.Snapshots}, nil
}

// New creates a new application
func New(cfg *config.Config) (*App, error) {
	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Open storage
	db, err := bolt.Open(cfg.Storage.Path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	// Register metrics before any component records them
	m := metrics.New()
	metrics.SetGlobal(m)

	// Core engine components
	p := parser.New(logger.With("component", "parser"), template.NewID)
	g := generator.New(logger.With("component", "generator"))

	// Preview delivery client
	var sender api.Sender
	if cfg.Delivery.Enabled {
		client := delivery.NewClient(delivery.Options{
			Host:     cfg.Delivery.Host,
			Port:     cfg.Delivery.Port,
			Username: cfg.Delivery.Username,
			Password: cfg.Delivery.Password,
			From:     cfg.Delivery.From,
			Hostname: cfg.Server.Hostname,
			Timeout:  cfg.Delivery.Timeout,
		}, logger.With("component", "delivery"))

		if cfg.Delivery.DKIM.Enabled {
			signer, err := delivery.NewSignerFromFile(
				cfg.Delivery.DKIM.KeyFile,
				cfg.Delivery.DKIM.Domain,
				cfg.Delivery.DKIM.Selector,
			)
			if err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to load DKIM key: %w", err)
			}
			client.SetSigner(signer)
			logger.Info("DKIM signing enabled",
				"domain", cfg.Delivery.DKIM.Domain,
				"selector", cfg.Delivery.DKIM.Selector,
			)
		}

		sender = client
		logger.Info("preview delivery enabled", "host", cfg.Delivery.Host)
	}

	// Create API server
	apiServer := api.NewServer(st, p, g, sender, &cfg.API, logger.With("component", "api"))

	// Metrics server and background collector
	var metricsServer *metrics.Server
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path,
			cfg.Metrics.AllowedIPs, logger.With("component", "metrics"))
		collector = metrics.NewCollector(m, storeStats{store: st}, cfg.Storage.Path, 0)
	}

	return &App{
		config:        cfg,
		db:            db,
		store:         st,
		apiServer:     apiServer,
		metricsServer: metricsServer,
		collector:     collector,
		logger:        logger,
	}, nil
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting monketer",
		"hostname", a.config.Server.Hostname,
		"api_addr", a.config.API.ListenAddr,
		"storage", a.config.Storage.Path,
	)

	// Create context that listens for signals
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if a.collector != nil {
		a.collector.Start(ctx)
	}

	// Channel to collect errors
	errCh := make(chan error, 2)

	// Start API server
	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Start metrics server
	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("server error", "error", err)
		cancel()
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	// Create timeout context
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if a.collector != nil {
		a.collector.Stop()
	}

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Close storage
	if err := a.db.Close(); err != nil {
		a.logger.Error("storage close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
