package postgres

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

// PostgresProgressStore implements store.ProgressStore on the progress_items table.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a progress store over db.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

const progressColumns = `id, user_id, title, kind, status, xp, details, created_at, updated_at`

// Create implements store.ProgressStore.Create.
func (s *PostgresProgressStore) Create(ctx context.Context, item *domain.ProgressItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("progress item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO progress_items (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.Title,
		item.Kind,
		string(item.Status),
		item.XP,
		nullableJSON(item.Details),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create progress item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("progress_item", "create", "insert failed", MapError(err))
	}

	log.Debug("progress item created",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID))
	return nil
}

// GetByID implements store.ProgressStore.GetByID.
func (s *PostgresProgressStore) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.ProgressItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + ` FROM progress_items WHERE id = $1 AND user_id = $2`

	item, err := scanProgressItem(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("progress item not found", slog.String("item_id", id.String()))
			return nil, store.ErrProgressItemNotFound
		}
		log.Error("failed to get progress item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, store.NewStoreError("progress_item", "get", "query failed", MapError(err))
	}
	return item, nil
}

// ListByUser implements store.ProgressStore.ListByUser.
func (s *PostgresProgressStore) ListByUser(ctx context.Context, userID string) ([]domain.ProgressItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM progress_items
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list progress items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, store.NewStoreError("progress_item", "list", "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []domain.ProgressItem{}
	for rows.Next() {
		item, err := scanProgressItem(rows)
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
func (s *PostgresProgressStore) Update(ctx context.Context, item *domain.ProgressItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE progress_items
		SET title = $1, kind = $2, status = $3, xp = $4, details = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		item.Title,
		item.Kind,
		string(item.Status),
		item.XP,
		nullableJSON(item.Details),
		item.UpdatedAt,
		item.ID,
		item.UserID,
	)
	if err != nil {
		log.Error("failed to update progress item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("progress_item", "update", "exec failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrProgressItemNotFound); err != nil {
		log.Debug("progress item update affected no rows", slog.String("item_id", item.ID.String()))
		return err
	}

	log.Debug("progress item updated",
		slog.String("item_id", item.ID.String()),
		slog.String("status", string(item.Status)))
	return nil
}

// WithTx implements store.ProgressStore.WithTx.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgressItem(row rowScanner) (*domain.ProgressItem, error) {
	var item domain.ProgressItem
	var status string
	var details []byte

	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&item.Kind,
		&status,
		&item.XP,
		&details,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}

	item.Status = domain.ItemStatus(status)
	if len(details) > 0 {
		item.Details = json.RawMessage(details)
	}
	return &item, nil
}

// nullableJSON maps empty details to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
