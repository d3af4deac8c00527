package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/store"
)

// Event names published after progress mutations.
const (
	EventItemAdded     = "item_added"
	EventItemCompleted = "item_completed"
)

// NewItem holds the fields of an item to add.
type NewItem struct {
	Title   string
	Kind    string
	XP      int
	Details json.RawMessage
}

// ProgressService provides the progress mutations that drive live snapshots.
type ProgressService interface {
	// ListItems returns the user's items.
	ListItems(ctx context.Context, userID string) ([]domain.ProgressItem, error)

	// AddItem creates a pending item and notifies the user's sinks.
	AddItem(ctx context.Context, userID string, item NewItem) (*domain.ProgressItem, error)

	// CompleteItem marks an item completed and notifies the user's sinks.
	// Completing an already completed item is a no-op without notification.
	CompleteItem(ctx context.Context, userID string, itemID uuid.UUID) (*domain.ProgressItem, error)
}

type progressServiceImpl struct {
	db       *sql.DB
	items    store.ProgressStore
	notifier ChangeNotifier
	logger   *slog.Logger
}

// NewProgressService creates a ProgressService. db is used for transactions
// around items.
func NewProgressService(
	db *sql.DB,
	items store.ProgressStore,
	notifier ChangeNotifier,
	logger *slog.Logger,
) (ProgressService, error) {
	if db == nil {
		return nil, &ProgressServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if items == nil {
		return nil, &ProgressServiceError{Operation: "create_service", Message: "items cannot be nil"}
	}
	if notifier == nil {
		return nil, &ProgressServiceError{Operation: "create_service", Message: "notifier cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &progressServiceImpl{
		db:       db,
		items:    items,
		notifier: notifier,
		logger:   logger.With("component", "progress_service"),
	}, nil
}

func (s *progressServiceImpl) ListItems(ctx context.Context, userID string) ([]domain.ProgressItem, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewProgressServiceError("list_items", "failed to list items", err)
	}
	return items, nil
}

func (s *progressServiceImpl) AddItem(ctx context.Context, userID string, in NewItem) (*domain.ProgressItem, error) {
	item, err := domain.NewProgressItem(userID, in.Title, in.Kind, in.XP, in.Details)
	if err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		s.logger.Error("failed to create progress item",
			"error", err,
			"user_id", userID)
		return nil, NewProgressServiceError("add_item", "failed to save item", err)
	}

	s.logger.Info("progress item added", "item_id", item.ID, "user_id", userID)
	s.notify(ctx, userID, EventItemAdded)
	return item, nil
}

func (s *progressServiceImpl) CompleteItem(
	ctx context.Context,
	userID string,
	itemID uuid.UUID,
) (*domain.ProgressItem, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}

	var (
		item    *domain.ProgressItem
		changed bool
	)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txItems := s.items.WithTx(tx)

		var err error
		item, err = txItems.GetByID(ctx, userID, itemID)
		if err != nil {
			return NewProgressServiceError("complete_item", "failed to retrieve item", err)
		}
		if item.Status == domain.ItemStatusCompleted {
			return nil
		}

		item.Complete(time.Now())
		if err := txItems.Update(ctx, item); err != nil {
			return NewProgressServiceError("complete_item", "failed to save item", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrItemNotFound) {
			s.logger.Error("failed to complete progress item",
				"error", err,
				"item_id", itemID,
				"user_id", userID)
		}
		return nil, err
	}

	if changed {
		s.logger.Info("progress item completed", "item_id", itemID, "user_id", userID, "xp", item.XP)
		s.notify(ctx, userID, EventItemCompleted)
	}
	return item, nil
}

// notify runs after commit. Its failures never fail the mutation.
func (s *progressServiceImpl) notify(ctx context.Context, userID, eventName string) {
	if _, err := s.notifier.Notify(ctx, userID, eventName); err != nil {
		s.logger.Warn("failed to notify live sessions",
			"error", err,
			"user_id", userID,
			"event", eventName)
	}
}
