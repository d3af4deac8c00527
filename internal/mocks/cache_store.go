package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/store"
)

// MockCacheStore is an in-memory store.CacheStore. Set GetFn or InsertFn to
// override a method; otherwise entries are kept in a map with
// insert-if-absent semantics.
type MockCacheStore struct {
	GetFn    func(ctx context.Context, scope, key string) (*domain.CacheEntry, error)
	InsertFn func(ctx context.Context, entry *domain.CacheEntry) (bool, error)

	mu          sync.Mutex
	entries     map[string]domain.CacheEntry
	getCalls    int
	insertCalls int
}

var _ store.CacheStore = (*MockCacheStore)(nil)

// NewMockCacheStore creates an empty MockCacheStore.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{entries: make(map[string]domain.CacheEntry)}
}

func cacheMapKey(scope, key string) string {
	return scope + "\x00" + key
}

// Get implements store.CacheStore.
func (m *MockCacheStore) Get(ctx context.Context, scope, key string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(ctx, scope, key)
	}
	return m.Lookup(scope, key)
}

// Insert implements store.CacheStore.
func (m *MockCacheStore) Insert(ctx context.Context, entry *domain.CacheEntry) (bool, error) {
	m.mu.Lock()
	m.insertCalls++
	m.mu.Unlock()

	if m.InsertFn != nil {
		return m.InsertFn(ctx, entry)
	}
	return m.Put(entry), nil
}

// Lookup reads the in-memory map directly, bypassing GetFn.
func (m *MockCacheStore) Lookup(scope, key string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[cacheMapKey(scope, key)]
	if !ok {
		return nil, store.ErrCacheEntryNotFound
	}
	return &e, nil
}

// Put stores entry unless the key is present, bypassing InsertFn.
func (m *MockCacheStore) Put(entry *domain.CacheEntry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]domain.CacheEntry)
	}
	k := cacheMapKey(entry.Scope, entry.Key)
	if _, ok := m.entries[k]; ok {
		return false
	}
	m.entries[k] = *entry
	return true
}

// Len returns the number of stored entries.
func (m *MockCacheStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// GetCalls returns how many times Get was called.
func (m *MockCacheStore) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

// InsertCalls returns how many times Insert was called.
func (m *MockCacheStore) InsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCalls
}
