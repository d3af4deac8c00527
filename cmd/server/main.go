// Package main implements the entry point for the Pathway API server, which
// serves cached LLM-generated career guidance and pushes live progress
// snapshots to connected clients.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/pathway-api/internal/config"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run database migrations and exit: up, down or status")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("pathway-api: %v", err)
	}
}

// run loads configuration, opens the database and either executes a
// migration command or serves HTTP until SIGINT or SIGTERM.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"auth_enabled", cfg.Auth.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDB(db, l)
		return runMigrations(ctx, db, cfg.Database.Driver, migrateCmd, l)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, db, cfg.Database.Driver, "up", l); err != nil {
			closeDB(db, l)
			return err
		}
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		closeDB(db, l)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

func closeDB(db interface{ Close() error }, l *slog.Logger) {
	if err := db.Close(); err != nil {
		l.Error("Error closing database connection", "error", err)
	}
}
