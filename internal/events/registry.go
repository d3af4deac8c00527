package events

import (
	"sync"
	"time"
)

// Subscriber is a live sink registered for a user.
type Subscriber struct {
	UserID      string
	Sink        Sink
	ConnectedAt time.Time
}

// Stats summarizes the registry.
type Stats struct {
	ConnectedUsers int `json:"connected_users"`
	TotalSinks     int `json:"total_sinks"`
}

// Registry maps users to their live sinks. It is the only owner of the sink
// sets; a sink belongs to one user for its lifetime.
//
// A single mutex guards the whole map. Every critical section is a map
// operation with no I/O, so contention stays low even under heavy churn.
type Registry struct {
	mu    sync.Mutex
	users map[string]map[Sink]*Subscriber
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]map[Sink]*Subscriber)}
}

// Subscribe registers sink under userID. Subscribing the same sink twice is a
// no-op.
func (r *Registry) Subscribe(userID string, sink Sink) *Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks, ok := r.users[userID]
	if !ok {
		sinks = make(map[Sink]*Subscriber)
		r.users[userID] = sinks
	}
	if sub, ok := sinks[sink]; ok {
		return sub
	}

	sub := &Subscriber{UserID: userID, Sink: sink, ConnectedAt: time.Now().UTC()}
	sinks[sink] = sub
	return sub
}

// Unsubscribe removes sink from userID and reports whether it was present.
// The user's entry is dropped once it has no sinks left.
func (r *Registry) Unsubscribe(userID string, sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks, ok := r.users[userID]
	if !ok {
		return false
	}
	if _, ok := sinks[sink]; !ok {
		return false
	}

	delete(sinks, sink)
	if len(sinks) == 0 {
		delete(r.users, userID)
	}
	return true
}

// Sinks returns a copy of userID's sinks, safe to iterate while the
// registry changes.
func (r *Registry) Sinks(userID string) []Sink {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks := r.users[userID]
	out := make([]Sink, 0, len(sinks))
	for s := range sinks {
		out = append(out, s)
	}
	return out
}

// Count returns the number of live sinks of userID.
func (r *Registry) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users[userID])
}

// Stats returns the number of users with at least one sink and the total
// sink count.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Stats{ConnectedUsers: len(r.users)}
	for _, sinks := range r.users {
		st.TotalSinks += len(sinks)
	}
	return st
}
