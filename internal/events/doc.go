// Package events delivers live per-user events to connected clients.
//
// The primary components are:
//   - Sink: one live, non-blocking push channel for a client session
//   - Registry: the process-wide map of user to live sinks
//   - Broadcaster: fans one event out to every sink of a user
//
// A Registry is created once at startup and injected into the handlers that
// subscribe and publish; there is no package-level registry.
package events
