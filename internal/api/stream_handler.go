package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pathway-api/internal/api/shared"
	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/events"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
	"github.com/phrazzld/pathway-api/internal/service"
)

// SnapshotSource builds the current snapshot of a user.
type SnapshotSource interface {
	Build(ctx context.Context, userID string) (*domain.Snapshot, error)
}

// StreamHandler serves the live-sync stream and its notify and stats
// endpoints. All three share one registry.
type StreamHandler struct {
	registry  *events.Registry
	snapshots SnapshotSource
	notifier  service.ChangeNotifier
	heartbeat time.Duration
	buffer    int
	validator *validator.Validate
}

// NewStreamHandler creates a StreamHandler. heartbeat is the interval of
// keep-alive comments; buffer bounds each sink's queue.
func NewStreamHandler(
	registry *events.Registry,
	snapshots SnapshotSource,
	notifier service.ChangeNotifier,
	heartbeat time.Duration,
	buffer int,
) *StreamHandler {
	return &StreamHandler{
		registry:  registry,
		snapshots: snapshots,
		notifier:  notifier,
		heartbeat: heartbeat,
		buffer:    buffer,
		validator: validator.New(),
	}
}

// Stream handles GET /api/stream?user_id= and GET /api/users/{userID}/stream.
// It sends one snapshot event, then named events and heartbeats until the
// client goes away.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	userID, err := getUserID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Subscribe before building the snapshot so no notification between the
	// two is lost; it waits in the sink queue.
	sink := events.NewChannelSink(h.buffer)
	h.registry.Subscribe(userID, sink)
	defer func() {
		h.registry.Unsubscribe(userID, sink)
		sink.Close()
		log.Debug("stream closed", "user_id", userID)
	}()

	snap, err := h.snapshots.Build(ctx, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load snapshot")
		return
	}
	initial, err := events.NewEvent(service.SnapshotEventName, snap)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load snapshot")
		return
	}

	flusher, err := events.PrepareStream(w)
	if err != nil {
		HandleAPIError(w, r, err, "Streaming unsupported")
		return
	}
	if err := events.WriteEvent(w, initial); err != nil {
		log.Debug("failed to write initial snapshot", "user_id", userID, "error", err)
		return
	}
	flusher.Flush()

	log.Debug("stream opened", "user_id", userID, "sinks", h.registry.Count(userID))

	// Write failures mean the client is gone; the deferred cleanup drops the sink.
	if err := events.Serve(ctx, w, flusher, sink, h.heartbeat); err != nil {
		log.Debug("stream ended", "user_id", userID, "error", err)
	}
}

// Notify handles POST /api/notify.
func (h *StreamHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	eventName := req.EventName
	if eventName == "" {
		eventName = service.DefaultEventName
	}

	sinks, err := h.notifier.Notify(r.Context(), req.UserID, eventName)
	if err != nil {
		// Broadcast problems never fail the caller; report the live count.
		logger.FromContext(r.Context()).Warn("notify failed",
			"user_id", req.UserID,
			"event", eventName,
			"error", err)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NotifyResponse{
		UserID: req.UserID,
		Event:  eventName,
		Sinks:  sinks,
	})
}

// Stats handles GET /api/stream/stats.
func (h *StreamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.registry.Stats())
}
