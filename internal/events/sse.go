package events

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHeartbeat keeps idle streams alive through proxies that drop quiet
// connections after about 30 seconds.
const DefaultHeartbeat = 25 * time.Second

// ErrStreamingUnsupported is returned when the response writer can not flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported by response writer")

// WriteEvent writes ev as one server-sent event frame.
func WriteEvent(w io.Writer, ev Event) error {
	var buf bytes.Buffer
	if ev.Name != "" {
		fmt.Fprintf(&buf, "event: %s\n", ev.Name)
	}
	// A data field can not span lines; marshalled JSON never contains raw
	// newlines, but payloads built elsewhere might.
	for _, line := range bytes.Split(ev.Data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteComment writes an SSE comment line, ignored by clients.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}

// PrepareStream sets the SSE response headers and flushes them.
func PrepareStream(w http.ResponseWriter) (http.Flusher, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, nil
}

// Serve drains sink to w until ctx is done, the sink is closed or a write
// fails, sending a heartbeat comment every heartbeat interval. It owns one
// ticker, stopped on return.
func Serve(ctx context.Context, w io.Writer, flusher http.Flusher, sink *ChannelSink, heartbeat time.Duration) error {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sink.Done():
			return nil
		case ev := <-sink.Events():
			if err := WriteEvent(w, ev); err != nil {
				return fmt.Errorf("failed to write %q event: %w", ev.Name, err)
			}
			flusher.Flush()
		case <-ticker.C:
			if err := WriteComment(w, "heartbeat"); err != nil {
				return fmt.Errorf("failed to write heartbeat: %w", err)
			}
			flusher.Flush()
		}
	}
}
