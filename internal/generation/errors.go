package generation

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the generation package
var (
	// ErrUpstreamUnavailable is returned when the generation service is
	// unreachable, rate limited or timed out. Nothing is cached.
	ErrUpstreamUnavailable = errors.New("generation service unavailable")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrExtractionFailed is returned when no structured value could be
	// recovered from the generation output. Nothing is cached.
	ErrExtractionFailed = errors.New("no structured value in generation output")

	// ErrUnknownKind is returned for a generation kind without a prompt template.
	ErrUnknownKind = errors.New("unknown generation kind")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// ExtractionError describes a failed extraction: which tiers were tried and
// how much text they were given.
type ExtractionError struct {
	Tiers       []string
	InputLength int
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s (input %d bytes, tried %s)",
		ErrExtractionFailed, e.InputLength, strings.Join(e.Tiers, ", "))
}

// Unwrap allows errors.Is(err, ErrExtractionFailed).
func (e *ExtractionError) Unwrap() error {
	return ErrExtractionFailed
}
