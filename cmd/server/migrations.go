package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/phrazzld/pathway-api/internal/platform/postgres"
	"github.com/phrazzld/pathway-api/internal/platform/sqlite"
	"github.com/pressly/goose/v3"
)

// newMigrationProvider returns a goose provider for driver's embedded migrations.
func newMigrationProvider(db *sql.DB, driver string, logger *slog.Logger) (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		fsys    fs.FS
	)
	switch driver {
	case driverPostgres:
		dialect, fsys = goose.DialectPostgres, postgres.Migrations()
	case driverSQLite:
		dialect, fsys = goose.DialectSQLite3, sqlite.Migrations()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return goose.NewProvider(dialect, db, fsys,
		goose.WithLogger(&slogGooseLogger{logger: logger}),
	)
}

// runMigrations executes a migration command: up, down or status.
// The provider is not closed because that would close db.
func runMigrations(ctx context.Context, db *sql.DB, driver, command string, logger *slog.Logger) error {
	log := logger.With("component", "migrations", "command", command)

	provider, err := newMigrationProvider(db, driver, log)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		for _, r := range results {
			log.Info("Applied migration",
				"version", r.Source.Version,
				"duration_ms", r.Duration.Milliseconds())
		}
		log.Info("Migrations up to date", "applied", len(results))
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Info("Rolled back migration", "version", r.Source.Version)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}
		for _, s := range statuses {
			log.Info("Migration status",
				"version", s.Source.Version,
				"path", s.Source.Path,
				"state", string(s.State),
				"applied_at", s.AppliedAt)
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	return nil
}

// slogGooseLogger adapts slog to goose.Logger.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
