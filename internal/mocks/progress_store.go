package mocks

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/store"
)

// MockProgressStore is an in-memory store.ProgressStore. The Fn fields
// override individual methods; WithTx returns the same store.
type MockProgressStore struct {
	CreateFn     func(ctx context.Context, item *domain.ProgressItem) error
	ListByUserFn func(ctx context.Context, userID string) ([]domain.ProgressItem, error)
	UpdateFn     func(ctx context.Context, item *domain.ProgressItem) error

	mu    sync.Mutex
	items []domain.ProgressItem
}

var _ store.ProgressStore = (*MockProgressStore)(nil)

// NewMockProgressStore creates a store seeded with items.
func NewMockProgressStore(items ...domain.ProgressItem) *MockProgressStore {
	return &MockProgressStore{items: slices.Clone(items)}
}

// Create implements store.ProgressStore.
func (m *MockProgressStore) Create(ctx context.Context, item *domain.ProgressItem) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *item)
	return nil
}

// GetByID implements store.ProgressStore.
func (m *MockProgressStore) GetByID(_ context.Context, userID string, id uuid.UUID) (*domain.ProgressItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range m.items {
		if it.ID == id && it.UserID == userID {
			return &it, nil
		}
	}
	return nil, store.ErrProgressItemNotFound
}

// ListByUser implements store.ProgressStore.
func (m *MockProgressStore) ListByUser(ctx context.Context, userID string) ([]domain.ProgressItem, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.ProgressItem{}
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Update implements store.ProgressStore.
func (m *MockProgressStore) Update(ctx context.Context, item *domain.ProgressItem) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, item)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = *item
			return nil
		}
	}
	return store.ErrProgressItemNotFound
}

// WithTx implements store.ProgressStore.
func (m *MockProgressStore) WithTx(*sql.Tx) store.ProgressStore {
	return m
}
