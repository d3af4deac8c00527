package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/genai"
)

// Error definitions for the gemini package.
var (
	// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyResponse is returned when the model answers without any candidate text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// isTransient reports whether err is worth retrying: rate limiting, server
// side failures and network errors. Caller cancellation is never transient.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
