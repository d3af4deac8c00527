package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/pathway-api/internal/config"
	"github.com/phrazzld/pathway-api/internal/platform/postgres"
	"github.com/phrazzld/pathway-api/internal/platform/sqlite"
	"github.com/phrazzld/pathway-api/internal/store"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// setupAppDatabase opens the configured database, sizes its pool and
// verifies connectivity.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case driverPostgres:
		db, err = sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(max(cfg.MaxOpenConns/2, 1))
		db.SetConnMaxLifetime(5 * time.Minute)
	case driverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established", "driver", cfg.Driver)
	return db, nil
}

// newStores builds the store implementations for driver over db.
func newStores(driver string, db *sql.DB, logger *slog.Logger) (store.CacheStore, store.ProgressStore, error) {
	switch driver {
	case driverPostgres:
		return postgres.NewPostgresCacheStore(db, logger), postgres.NewPostgresProgressStore(db, logger), nil
	case driverSQLite:
		return sqlite.NewCacheStore(db, logger), sqlite.NewProgressStore(db, logger), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
