// Package shared holds request context helpers, request decoding and the
// JSON response envelope used by every handler and middleware.
package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Key type for context values
type ContextKey string

// Context keys for various values
const (
	// ScopeContextKey is the context key for the authenticated subject that
	// scopes generation cache entries.
	ScopeContextKey ContextKey = "scope"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a trace ID to the context. An empty id is replaced by a
// freshly generated one.
func SetTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = generateTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithScope stores the authenticated subject in ctx.
func WithScope(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ScopeContextKey, subject)
}

// GetScope returns the authenticated subject, or "" (the global scope) for
// anonymous requests.
func GetScope(ctx context.Context) string {
	scope, _ := ctx.Value(ScopeContextKey).(string)
	return scope
}

// generateTraceID returns a random 32 character hex ID.
func generateTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
