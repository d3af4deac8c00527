package sqlite_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/platform/sqlite"
	"github.com/phrazzld/pathway-api/internal/store"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openMigrated returns a fresh in-memory database with all migrations applied.
func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sqlite.Migrations())
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err)
	return db
}

func TestMigrations_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sqlite.Migrations())
	require.NoError(t, err)

	results, err := provider.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err)

	var n int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'generation_cache'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCacheStore(t *testing.T) {
	db := openMigrated(t)
	s := sqlite.NewCacheStore(db, discardLogger())
	ctx := context.Background()

	_, err := s.Get(ctx, "", "k")
	assert.ErrorIs(t, err, store.ErrCacheEntryNotFound)

	first := domain.NewCacheEntry("", "k", json.RawMessage(`{"v":1}`))
	inserted, err := s.Insert(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.Insert(ctx, domain.NewCacheEntry("", "k", json.RawMessage(`{"v":2}`)))
	require.NoError(t, err)
	assert.False(t, inserted, "an existing key is never overwritten")

	got, err := s.Get(ctx, "", "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got.Payload))
	assert.Equal(t, first.CreatedAt.Truncate(time.Millisecond), got.CreatedAt)

	_, err = s.Get(ctx, "user-1", "k")
	assert.ErrorIs(t, err, store.ErrCacheEntryNotFound, "scopes do not share entries")
}

func TestCacheStore_ConcurrentInsertsKeepOneValue(t *testing.T) {
	db := openMigrated(t)
	s := sqlite.NewCacheStore(db, discardLogger())
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	wins := make(chan int, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Insert(ctx, domain.NewCacheEntry("", "race", json.RawMessage(fmt.Sprintf(`{"w":%d}`, i))))
			assert.NoError(t, err)
			if ok {
				wins <- i
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
	winner := <-wins
	got, err := s.Get(ctx, "", "race")
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"w":%d}`, winner), string(got.Payload))
}

func TestProgressStore(t *testing.T) {
	db := openMigrated(t)
	s := sqlite.NewProgressStore(db, discardLogger())
	ctx := context.Background()

	a, err := domain.NewProgressItem("user-1", "Learn Go", "step", 10, json.RawMessage(`{"week":1}`))
	require.NoError(t, err)
	b, err := domain.NewProgressItem("user-1", "Ship API", "challenge", 20, nil)
	require.NoError(t, err)
	b.CreatedAt = a.CreatedAt.Add(time.Second)
	other, err := domain.NewProgressItem("user-2", "Other", "", 0, nil)
	require.NoError(t, err)

	for _, item := range []*domain.ProgressItem{b, a, other} {
		require.NoError(t, s.Create(ctx, item))
	}

	items, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.JSONEq(t, `{"week":1}`, string(items[0].Details))
	assert.Equal(t, b.ID, items[1].ID)
	assert.Nil(t, items[1].Details)

	empty, err := s.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.GetByID(ctx, "user-2", a.ID)
	assert.ErrorIs(t, err, store.ErrProgressItemNotFound)

	a.Complete(time.Now())
	require.NoError(t, s.Update(ctx, a))
	got, err := s.GetByID(ctx, "user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusCompleted, got.Status)

	missing := *a
	missing.ID = uuid.New()
	assert.ErrorIs(t, s.Update(ctx, &missing), store.ErrProgressItemNotFound)

	assert.ErrorIs(t, s.Create(ctx, a), store.ErrDuplicate)
}

func TestProgressStore_WithTxRollback(t *testing.T) {
	db := openMigrated(t)
	s := sqlite.NewProgressStore(db, discardLogger())
	ctx := context.Background()

	item, err := domain.NewProgressItem("user-1", "Rolled back", "", 0, nil)
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	items, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, sqlite.MapError(nil))
	assert.ErrorIs(t, sqlite.MapError(sql.ErrNoRows), store.ErrNotFound)
	assert.ErrorIs(t, sqlite.MapError(fmt.Errorf("constraint failed: UNIQUE constraint failed: t.id (2067)")), store.ErrDuplicate)
	assert.ErrorIs(t, sqlite.MapError(fmt.Errorf("CHECK constraint failed: xp >= 0")), store.ErrInvalidEntity)
}
