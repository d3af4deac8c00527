package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
)

// ProgressStore defines persistence for the progress items that make up a
// user's live snapshot.
type ProgressStore interface {
	// Create saves a new item. Returns validation errors from the domain item.
	Create(ctx context.Context, item *domain.ProgressItem) error

	// GetByID retrieves an item owned by userID.
	// Returns ErrProgressItemNotFound if the item does not exist for that user.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.ProgressItem, error)

	// ListByUser returns all items of userID ordered by creation time.
	// Returns an empty slice when the user has no items.
	ListByUser(ctx context.Context, userID string) ([]domain.ProgressItem, error)

	// Update saves the status and timestamps of an existing item.
	// Returns ErrProgressItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.ProgressItem) error

	// WithTx returns a ProgressStore bound to tx.
	WithTx(tx *sql.Tx) ProgressStore
}
