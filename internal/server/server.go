// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stackmill/accessd/internal/api"
	"github.com/stackmill/accessd/internal/audit"
	"github.com/stackmill/accessd/internal/auth"
	"github.com/stackmill/accessd/internal/config"
	"github.com/stackmill/accessd/internal/db"
	"github.com/stackmill/accessd/internal/logger"
	"github.com/stackmill/accessd/internal/queue"
	"github.com/stackmill/accessd/internal/rbac"
	"github.com/stackmill/accessd/internal/worker"
	"gorm.io/gorm"
)

// Config holds the server startup options.
type Config struct {
	Port    int    // Port to run the server on (0 = use config default)
	Version string // Version string to report
}

// Run starts the server with the given configuration and blocks until the
// context is canceled.
func Run(ctx context.Context, cfg Config) error {
	// Load configuration
	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from CLI flag if provided
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	// Initialize logger
	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting accessd", "version", cfg.Version, "mode", appCfg.Server.Mode)

	// Initialize database
	database, err := db.New(appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	// Run migrations
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	// Initialize the permission registry
	if err := rbac.InitEnforcer(database, slog.Default()); err != nil {
		return fmt.Errorf("failed to initialize RBAC: %w", err)
	}

	// Create default admin user if configured
	if err := db.CreateDefaultAdmin(database); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	// Initialize audit queue based on configuration
	auditQueue, err := createQueue(appCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize audit queue: %w", err)
	}
	defer auditQueue.Close()
	slog.Info("Audit queue initialized", "type", appCfg.Audit.Queue)

	// Start the audit worker. Its context is deliberately independent of
	// the server's: shutdown stops it by closing the queue, so events
	// buffered at that point still get drained and persisted.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	w := worker.New(database, auditQueue, slog.Default())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := w.Start(workerCtx); err != nil && err != context.Canceled {
			slog.Error("Audit worker failed", "error", err)
		}
	}()

	// Initialize authenticator
	authenticator, err := createAuthenticator(ctx, appCfg, database)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	recorder := audit.NewRecorder(auditQueue)
	router := api.NewRouter(appCfg, database, recorder, authenticator)

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()
	slog.Info("Shutting down...")

	// Stop the HTTP server first so no new audit events are recorded
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var shutdownErr error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Then close the queue and wait for the worker to drain what is
	// buffered before giving up
	auditQueue.Close()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		slog.Warn("Audit worker did not drain in time")
		workerCancel()
	}

	slog.Info("accessd exited")
	return shutdownErr
}

// RunWithSignalHandling starts the server and handles OS signals for
// graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig)
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// createQueue creates an audit queue based on configuration.
func createQueue(cfg *config.Config) (queue.Queue, error) {
	switch cfg.Audit.Queue {
	case "memory":
		return queue.NewMemoryQueue(256), nil
	case "valkey":
		if cfg.Audit.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey address is required when audit queue is valkey")
		}
		return queue.NewValkeyQueue(cfg.Audit.ValkeyAddr)
	default:
		return nil, fmt.Errorf("unsupported audit queue type: %s (supported: memory, valkey)", cfg.Audit.Queue)
	}
}

// createAuthenticator selects the authentication provider from config.
func createAuthenticator(ctx context.Context, cfg *config.Config, database *gorm.DB) (auth.Authenticator, error) {
	switch cfg.Auth.Type {
	case "basic":
		return auth.NewBasicAuthenticator(database, cfg.Auth.JWTSecret), nil
	case "oidc":
		return auth.NewOIDCAuthenticator(ctx, auth.OIDCConfig{
			IssuerURL:    cfg.Auth.OIDCIssuerURL,
			ClientID:     cfg.Auth.OIDCClientID,
			ClientSecret: cfg.Auth.OIDCClientSecret,
			RedirectURL:  cfg.Auth.OIDCRedirectURL,
		}, database, cfg.Auth.JWTSecret)
	default:
		return nil, fmt.Errorf("unsupported auth type: %s (supported: basic, oidc)", cfg.Auth.Type)
	}
}
