package generation

import "context"

// Client defines the boundary between the application and the external
// text generation service. Implementations send one prompt and return the
// raw free-text answer.
//
// Implementations should apply their own bounded timeout and report
// failures wrapped in ErrUpstreamUnavailable or ErrContentBlocked. They must
// not retry unless the call is known to be safely repeatable.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f ClientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
