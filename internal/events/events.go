package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSinkClosed is returned when sending to a sink that has been closed.
	ErrSinkClosed = errors.New("sink closed")

	// ErrSinkFull is returned when a sink's queue is full. A consumer that
	// falls this far behind is treated as disconnected.
	ErrSinkFull = errors.New("sink buffer full")
)

// Event is one named message pushed to a sink. Data is already serialized
// so a broadcast marshals its payload once for all sinks.
type Event struct {
	Name string
	Data json.RawMessage
}

// NewEvent creates an Event with payload marshalled to JSON.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %q event payload: %w", name, err)
	}
	return Event{Name: name, Data: data}, nil
}

// Sink receives events for one client session. Send must not block.
// Implementations must be comparable; pointer types are.
type Sink interface {
	// Send enqueues ev, or returns an error if the sink can not take it.
	Send(ev Event) error
	// Close marks the sink dead. Further sends fail.
	Close()
}

// ChannelSink is a Sink backed by a bounded channel. The session that owns
// it drains Events until Done is closed.
type ChannelSink struct {
	mu     sync.Mutex
	ch     chan Event
	done   chan struct{}
	closed bool
}

// NewChannelSink creates a sink that queues up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChannelSink{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Send implements Sink.
func (s *ChannelSink) Send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.ch <- ev:
		return nil
	default:
		return ErrSinkFull
	}
}

// Close implements Sink. It is safe to call more than once.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// Events returns the queue of pending events.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Done is closed once the sink has been closed.
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}
