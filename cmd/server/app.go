package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/pathway-api/internal/config"
	"github.com/phrazzld/pathway-api/internal/events"
	"github.com/phrazzld/pathway-api/internal/generation"
	"github.com/phrazzld/pathway-api/internal/platform/gemini"
	"github.com/phrazzld/pathway-api/internal/service"
	"github.com/phrazzld/pathway-api/internal/service/auth"
	"github.com/phrazzld/pathway-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cacheStore    store.CacheStore
	progressStore store.ProgressStore

	// jwtService is nil when auth.jwt_secret is not configured.
	jwtService auth.JWTService

	generationService *generation.Service

	// One registry per process, shared by the stream, notify and progress paths.
	registry        *events.Registry
	broadcaster     *events.Broadcaster
	snapshots       *service.SnapshotBuilder
	notifier        *service.Notifier
	progressService service.ProgressService
}

// newApplication creates the Gemini client and wires every dependency.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	client, err := gemini.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}
	logger.Info("Generation client initialized",
		"model", cfg.LLM.ModelName,
		"requests_per_second", cfg.LLM.RequestsPerSecond)

	return buildApplication(cfg, logger, db, client)
}

// buildApplication wires the application around an existing generation client.
func buildApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	client generation.Client,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.cacheStore, app.progressStore, err = newStores(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.Enabled() {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("Bearer token validation enabled")
	}

	app.generationService, err = generation.NewService(
		app.cacheStore,
		client,
		cfg.Generation.SchemaVersion,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.registry = events.NewRegistry()
	app.broadcaster = events.NewBroadcaster(app.registry, logger)
	app.snapshots = service.NewSnapshotBuilder(app.progressStore, logger)
	app.notifier = service.NewNotifier(app.registry, app.broadcaster, app.snapshots, logger)

	app.progressService, err = service.NewProgressService(db, app.progressStore, app.notifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) heartbeat() time.Duration {
	return time.Duration(app.config.Stream.HeartbeatSeconds) * time.Second
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}
