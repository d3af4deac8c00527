package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/pathway-api/internal/platform/logger"
)

// Broadcaster delivers events to every live sink of a user.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster over registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logger.With("component", "event_broadcaster"),
	}
}

// Publish sends one eventName event carrying payload to each sink of userID
// and returns how many sinks accepted it. A sink that fails is closed and
// removed; delivery to the other sinks continues. The only error is a
// payload that can not be marshalled.
func (b *Broadcaster) Publish(ctx context.Context, userID, eventName string, payload any) (int, error) {
	ev, err := NewEvent(eventName, payload)
	if err != nil {
		return 0, err
	}
	return b.Send(ctx, userID, ev), nil
}

// Send delivers an already serialized event. See Publish.
func (b *Broadcaster) Send(ctx context.Context, userID string, ev Event) int {
	log := logger.FromContextOrDefault(ctx, b.logger)

	sinks := b.registry.Sinks(userID)
	delivered := 0
	for _, sink := range sinks {
		if err := sink.Send(ev); err != nil {
			b.registry.Unsubscribe(userID, sink)
			sink.Close()
			log.Warn("dropped sink after failed delivery",
				"user_id", userID,
				"event", ev.Name,
				"error", err)
			continue
		}
		delivered++
	}

	log.Debug("published event",
		"user_id", userID,
		"event", ev.Name,
		"sink_count", len(sinks),
		"delivered", delivered)
	return delivered
}
