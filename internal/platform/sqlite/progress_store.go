package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
	"github.com/phrazzld/pathway-api/internal/store"
)

// ProgressStore implements store.ProgressStore on SQLite.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProgressStore creates a progress store over db.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{db: db, logger: logger.With(slog.String("component", "progress_store"))}
}

var _ store.ProgressStore = (*ProgressStore)(nil)

const selectProgress = `SELECT id, user_id, title, kind, status, xp, details, created_at, updated_at FROM progress_items`

// Create implements store.ProgressStore.Create.
func (s *ProgressStore) Create(ctx context.Context, item *domain.ProgressItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress_items (id, user_id, title, kind, status, xp, details, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID.String(), item.UserID, item.Title, item.Kind, string(item.Status), item.XP,
		nullableJSON(item.Details), toMillis(item.CreatedAt), toMillis(item.UpdatedAt),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create progress item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("progress_item", "create", "insert failed", MapError(err))
	}
	return nil
}

// GetByID implements store.ProgressStore.GetByID.
func (s *ProgressStore) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.ProgressItem, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx,
		selectProgress+` WHERE id = ? AND user_id = ?`, id.String(), userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProgressItemNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("progress_item", "get", "query failed", MapError(err))
	}
	return item, nil
}

// ListByUser implements store.ProgressStore.ListByUser.
func (s *ProgressStore) ListByUser(ctx context.Context, userID string) ([]domain.ProgressItem, error) {
	rows, err := s.db.QueryContext(ctx,
		selectProgress+` WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, store.NewStoreError("progress_item", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	items := []domain.ProgressItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, store.NewStoreError("progress_item", "list", "scan failed", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("progress_item", "list", "iteration failed", err)
	}
	return items, nil
}

// Update implements store.ProgressStore.Update.
func (s *ProgressStore) Update(ctx context.Context, item *domain.ProgressItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE progress_items SET title = ?, kind = ?, status = ?, xp = ?, details = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		item.Title, item.Kind, string(item.Status), item.XP, nullableJSON(item.Details),
		toMillis(item.UpdatedAt), item.ID.String(), item.UserID,
	)
	if err != nil {
		return store.NewStoreError("progress_item", "update", "exec failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("progress_item", "update", "rows affected unavailable", err)
	}
	if n == 0 {
		return store.ErrProgressItemNotFound
	}
	return nil
}

// WithTx implements store.ProgressStore.WithTx.
func (s *ProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &ProgressStore{db: tx, logger: s.logger}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*domain.ProgressItem, error) {
	var item domain.ProgressItem
	var status string
	var details sql.NullString
	var created, updated int64

	if err := row.Scan(&item.ID, &item.UserID, &item.Title, &item.Kind, &status, &item.XP,
		&details, &created, &updated); err != nil {
		return nil, err
	}

	item.Status = domain.ItemStatus(status)
	if details.Valid && details.String != "" {
		item.Details = json.RawMessage(details.String)
	}
	item.CreatedAt = fromMillis(created)
	item.UpdatedAt = fromMillis(updated)
	return &item, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
