package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/pathway-api/internal/domain"
)

// ProgressReader is the read side of store.ProgressStore.
type ProgressReader interface {
	ListByUser(ctx context.Context, userID string) ([]domain.ProgressItem, error)
}

// SnapshotBuilder assembles a user's current aggregate view.
type SnapshotBuilder struct {
	items  ProgressReader
	now    func() time.Time
	logger *slog.Logger
}

// NewSnapshotBuilder creates a SnapshotBuilder reading from items.
func NewSnapshotBuilder(items ProgressReader, logger *slog.Logger) *SnapshotBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotBuilder{
		items:  items,
		now:    time.Now,
		logger: logger.With("component", "snapshot_builder"),
	}
}

// Build reads userID's items and returns them with derived totals. It has no
// side effects.
func (b *SnapshotBuilder) Build(ctx context.Context, userID string) (*domain.Snapshot, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}

	items, err := b.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress items for snapshot: %w", err)
	}

	for i := range items {
		items[i].Details = normalizeDetails(items[i].Details)
	}

	snap := domain.NewSnapshot(items, b.now())
	b.logger.Debug("built snapshot",
		"user_id", userID,
		"items", snap.Totals.Items,
		"xp", snap.Totals.XP)
	return snap, nil
}

// normalizeDetails unwraps details stored as a JSON string holding serialized
// JSON, so clients always receive the structured form. Anything else is
// returned unchanged.
func normalizeDetails(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || raw[0] != '"' {
		return raw
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return raw
	}
	if !json.Valid([]byte(text)) {
		return raw
	}
	return json.RawMessage(text)
}
