// Package gemini implements generation.Client on top of Google's Gemini API.
//
// The client sends a single prompt per call and returns the model's raw text.
// Every call is bounded by the configured timeout and paced by a token bucket
// limiter shared by all callers. Transient failures (rate limiting, server
// errors, network errors) are retried with exponential backoff and jitter only
// when MaxRetries is greater than zero.
//
// Failures are reported wrapped in generation.ErrUpstreamUnavailable, or
// generation.ErrContentBlocked when the model refuses on safety grounds.
package gemini
