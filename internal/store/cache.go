package store

import (
	"context"

	"github.com/phrazzld/pathway-api/internal/domain"
)

// CacheStore persists generation results keyed by (scope, normalized key).
// The only writer is the generation service.
type CacheStore interface {
	// Get returns the entry for scope and key.
	// Returns ErrCacheEntryNotFound on a miss.
	Get(ctx context.Context, scope, key string) (*domain.CacheEntry, error)

	// Insert stores entry unless an entry with the same scope and key exists.
	// inserted is false, with a nil error, when the key was already present;
	// a concurrent duplicate insert is not an error.
	Insert(ctx context.Context, entry *domain.CacheEntry) (inserted bool, err error)
}
