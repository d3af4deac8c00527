package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func item(userID, title string, xp int, status domain.ItemStatus, details string) domain.ProgressItem {
	now := time.Now().UTC()
	it := domain.ProgressItem{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Status:    status,
		XP:        xp,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if details != "" {
		it.Details = json.RawMessage(details)
	}
	return it
}

func TestSnapshotBuilder_Build(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := mocks.NewMockProgressStore(
		item("42", "Learn Go", 50, domain.ItemStatusCompleted, `{"week":1}`),
		item("42", "Build an API", 120, domain.ItemStatusPending, `"{\"week\":2}"`),
		item("42", "Ship it", 30, domain.ItemStatusCompleted, `"plain note"`),
		item("7", "Someone else", 999, domain.ItemStatusCompleted, ""),
	)
	b := NewSnapshotBuilder(items, discardLogger())
	b.now = func() time.Time { return fixed }

	snap, err := b.Build(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, domain.Totals{XP: 80, Items: 3, Completed: 2}, snap.Totals)
	assert.Equal(t, fixed, snap.Timestamp)
	require.Len(t, snap.Items, 3)
	assert.JSONEq(t, `{"week":1}`, string(snap.Items[0].Details))
	assert.JSONEq(t, `{"week":2}`, string(snap.Items[1].Details), "serialized details are unwrapped")
	assert.Equal(t, `"plain note"`, string(snap.Items[2].Details), "plain strings are kept")
}

func TestSnapshotBuilder_EmptyUser(t *testing.T) {
	b := NewSnapshotBuilder(mocks.NewMockProgressStore(), discardLogger())

	snap, err := b.Build(context.Background(), "42")
	require.NoError(t, err)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
	assert.Contains(t, string(data), `"xp":0`)
}

func TestSnapshotBuilder_Errors(t *testing.T) {
	items := mocks.NewMockProgressStore()
	items.ListByUserFn = func(context.Context, string) ([]domain.ProgressItem, error) {
		return nil, errors.New("connection refused")
	}
	b := NewSnapshotBuilder(items, discardLogger())

	_, err := b.Build(context.Background(), "42")
	assert.ErrorContains(t, err, "connection refused")

	_, err = b.Build(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyUserID)
}
