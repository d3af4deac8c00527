package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/events"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
)

// DefaultEventName is sent when Notify is called without an event name.
const DefaultEventName = "refresh"

// SnapshotEventName names the event that hydrates a newly opened stream.
const SnapshotEventName = "snapshot"

// ChangeNotifier is called by mutations once their change is committed.
type ChangeNotifier interface {
	Notify(ctx context.Context, userID, eventName string) (int, error)
}

// Notifier pushes a fresh snapshot to every live sink of a user.
type Notifier struct {
	registry    *events.Registry
	broadcaster *events.Broadcaster
	snapshots   *SnapshotBuilder
	logger      *slog.Logger

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock serializes snapshot build and publish for one user. refs counts
// holders and waiters so the entry can be freed when it drops to zero.
type userLock struct {
	sync.Mutex
	refs int
}

// NewNotifier creates a Notifier.
func NewNotifier(
	registry *events.Registry,
	broadcaster *events.Broadcaster,
	snapshots *SnapshotBuilder,
	logger *slog.Logger,
) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		registry:    registry,
		broadcaster: broadcaster,
		snapshots:   snapshots,
		logger:      logger.With("component", "notifier"),
		locks:       make(map[string]*userLock),
	}
}

// lockUser blocks until the caller holds userID's lock and returns its release.
func (n *Notifier) lockUser(userID string) func() {
	n.mu.Lock()
	l, ok := n.locks[userID]
	if !ok {
		l = &userLock{}
		n.locks[userID] = l
	}
	l.refs++
	n.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		n.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(n.locks, userID)
		}
		n.mu.Unlock()
	}
}

// Notify builds userID's snapshot and publishes it as eventName (default
// "refresh") to the user's sinks. It returns the user's live sink count
// after delivery. With no sinks the snapshot is never built. Concurrent
// notifies for one user publish one at a time.
func (n *Notifier) Notify(ctx context.Context, userID, eventName string) (int, error) {
	if userID == "" {
		return 0, domain.ErrEmptyUserID
	}
	if eventName == "" {
		eventName = DefaultEventName
	}

	if n.registry.Count(userID) == 0 {
		return 0, nil
	}

	// Snapshots reach sinks in the order they were read.
	unlock := n.lockUser(userID)
	defer unlock()

	snap, err := n.snapshots.Build(ctx, userID)
	if err != nil {
		return n.registry.Count(userID), fmt.Errorf("failed to build snapshot for notify: %w", err)
	}

	delivered, err := n.broadcaster.Publish(ctx, userID, eventName, snap)
	if err != nil {
		return n.registry.Count(userID), err
	}

	logger.FromContextOrDefault(ctx, n.logger).Debug("notified user",
		"user_id", userID,
		"event", eventName,
		"delivered", delivered)
	return n.registry.Count(userID), nil
}
