package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
	"github.com/phrazzld/pathway-api/internal/store"
)

// CacheStore implements store.CacheStore on SQLite.
type CacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCacheStore creates a cache store over db.
func NewCacheStore(db store.DBTX, logger *slog.Logger) *CacheStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheStore{db: db, logger: logger.With(slog.String("component", "cache_store"))}
}

var _ store.CacheStore = (*CacheStore)(nil)

// Get implements store.CacheStore.Get.
func (s *CacheStore) Get(ctx context.Context, scope, key string) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	var payload string
	var created int64

	err := s.db.QueryRowContext(ctx,
		`SELECT scope, cache_key, payload, created_at FROM generation_cache WHERE scope = ? AND cache_key = ?`,
		scope, key,
	).Scan(&entry.Scope, &entry.Key, &payload, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCacheEntryNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get cache entry",
			slog.String("error", err.Error()),
			slog.String("cache_key", key))
		return nil, store.NewStoreError("cache_entry", "get", "query failed", MapError(err))
	}

	entry.Payload = []byte(payload)
	entry.CreatedAt = fromMillis(created)
	return &entry, nil
}

// Insert implements store.CacheStore.Insert.
func (s *CacheStore) Insert(ctx context.Context, entry *domain.CacheEntry) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_cache (scope, cache_key, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (scope, cache_key) DO NOTHING`,
		entry.Scope, entry.Key, string(entry.Payload), toMillis(entry.CreatedAt),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert cache entry",
			slog.String("error", err.Error()),
			slog.String("cache_key", entry.Key))
		return false, store.NewStoreError("cache_entry", "insert", "exec failed", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("cache_entry", "insert", "rows affected unavailable", err)
	}
	return rows > 0, nil
}
