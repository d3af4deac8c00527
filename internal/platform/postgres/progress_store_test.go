package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/platform/postgres"
	"github.com/phrazzld/pathway-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var progressRowColumns = []string{
	"id", "user_id", "title", "kind", "status", "xp", "details", "created_at", "updated_at",
}

func newMockProgressStore(t *testing.T) (*postgres.PostgresProgressStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewPostgresProgressStore(db, discardLogger()), mock
}

func TestPostgresProgressStore_Create(t *testing.T) {
	t.Run("valid item", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		item, err := domain.NewProgressItem("user-1", "Learn Go", "step", 10, json.RawMessage(`{"week":1}`))
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO progress_items").
			WithArgs(item.ID, "user-1", "Learn Go", "step", "pending", 10, `{"week":1}`,
				item.CreatedAt, item.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), item))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty details stored as null", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		item, err := domain.NewProgressItem("user-1", "Learn Go", "", 0, nil)
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO progress_items").
			WithArgs(item.ID, "user-1", "Learn Go", "", "pending", 0, nil,
				item.CreatedAt, item.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), item))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid item never reaches the database", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		item := &domain.ProgressItem{ID: uuid.New(), UserID: "user-1", Status: domain.ItemStatusPending}

		err := s.Create(context.Background(), item)

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check violation", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		item, err := domain.NewProgressItem("user-1", "Learn Go", "", 0, nil)
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO progress_items").WillReturnError(newPgError("23514"))

		assert.ErrorIs(t, s.Create(context.Background(), item), store.ErrInvalidEntity)
	})
}

func TestPostgresProgressStore_GetByID(t *testing.T) {
	id := uuid.New()
	now := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		mock.ExpectQuery("FROM progress_items WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(id, "user-1").
			WillReturnRows(sqlmock.NewRows(progressRowColumns).
				AddRow(id.String(), "user-1", "Learn Go", "step", "completed", 5, nil, now, now))

		item, err := s.GetByID(context.Background(), "user-1", id)

		require.NoError(t, err)
		assert.Equal(t, id, item.ID)
		assert.Equal(t, domain.ItemStatusCompleted, item.Status)
		assert.Nil(t, item.Details)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found for another user", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		mock.ExpectQuery("FROM progress_items").
			WithArgs(id, "user-2").
			WillReturnRows(sqlmock.NewRows(progressRowColumns))

		_, err := s.GetByID(context.Background(), "user-2", id)

		assert.ErrorIs(t, err, store.ErrProgressItemNotFound)
	})
}

func TestPostgresProgressStore_ListByUser(t *testing.T) {
	now := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	t.Run("ordered rows", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		first, second := uuid.New(), uuid.New()
		mock.ExpectQuery("ORDER BY created_at, id").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(progressRowColumns).
				AddRow(first.String(), "user-1", "A", "step", "pending", 1, []byte(`{"x":1}`), now, now).
				AddRow(second.String(), "user-1", "B", "step", "completed", 2, nil, now.Add(time.Minute), now))

		items, err := s.ListByUser(context.Background(), "user-1")

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first, items[0].ID)
		assert.JSONEq(t, `{"x":1}`, string(items[0].Details))
		assert.Equal(t, second, items[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no items yields empty slice", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		mock.ExpectQuery("FROM progress_items").WillReturnRows(sqlmock.NewRows(progressRowColumns))

		items, err := s.ListByUser(context.Background(), "nobody")

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		mock.ExpectQuery("FROM progress_items").WillReturnError(errors.New("boom"))

		_, err := s.ListByUser(context.Background(), "user-1")

		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}

func TestPostgresProgressStore_Update(t *testing.T) {
	item, err := domain.NewProgressItem("user-1", "Learn Go", "step", 3, nil)
	require.NoError(t, err)
	item.Complete(time.Now())

	t.Run("updated", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		mock.ExpectExec("UPDATE progress_items").
			WithArgs("Learn Go", "step", "completed", 3, nil, item.UpdatedAt, item.ID, "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), item))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		s, mock := newMockProgressStore(t)
		mock.ExpectExec("UPDATE progress_items").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), item), store.ErrProgressItemNotFound)
	})
}

func TestPostgresProgressStore_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM progress_items").WillReturnRows(sqlmock.NewRows(progressRowColumns))
	mock.ExpectCommit()

	s := postgres.NewPostgresProgressStore(db, discardLogger())
	tx, err := db.Begin()
	require.NoError(t, err)

	items, err := s.WithTx(tx).ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
