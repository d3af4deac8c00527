package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
	"github.com/phrazzld/pathway-api/internal/store"
)

// PostgresCacheStore implements store.CacheStore on the generation_cache table.
type PostgresCacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCacheStore creates a cache store over db.
// If logger is nil, a default logger will be used.
func NewPostgresCacheStore(db store.DBTX, logger *slog.Logger) *PostgresCacheStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCacheStore{
		db:     db,
		logger: logger.With(slog.String("component", "cache_store")),
	}
}

var _ store.CacheStore = (*PostgresCacheStore)(nil)

// Get implements store.CacheStore.Get.
func (s *PostgresCacheStore) Get(ctx context.Context, scope, key string) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT scope, cache_key, payload, created_at
		FROM generation_cache
		WHERE scope = $1 AND cache_key = $2
	`

	var entry domain.CacheEntry
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, scope, key).Scan(
		&entry.Scope,
		&entry.Key,
		&payload,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("cache entry not found", slog.String("cache_key", key))
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get cache entry",
			slog.String("error", err.Error()),
			slog.String("cache_key", key))
		return nil, store.NewStoreError("cache_entry", "get", "query failed", MapError(err))
	}

	entry.Payload = payload
	return &entry, nil
}

// Insert implements store.CacheStore.Insert. An existing (scope, key) row is
// left untouched and reported as inserted == false.
func (s *PostgresCacheStore) Insert(ctx context.Context, entry *domain.CacheEntry) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO generation_cache (scope, cache_key, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, cache_key) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		entry.Scope,
		entry.Key,
		string(entry.Payload),
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert cache entry",
			slog.String("error", err.Error()),
			slog.String("cache_key", entry.Key))
		return false, store.NewStoreError("cache_entry", "insert", "exec failed", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("cache_entry", "insert", "rows affected unavailable", err)
	}

	if rows == 0 {
		log.Debug("cache entry already present", slog.String("cache_key", entry.Key))
		return false, nil
	}

	log.Debug("cache entry stored",
		slog.String("cache_key", entry.Key),
		slog.Int("payload_bytes", len(entry.Payload)))
	return true, nil
}
