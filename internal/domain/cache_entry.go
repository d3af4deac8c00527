package domain

import (
	"encoding/json"
	"time"
)

// Source tags where a generation-backed response came from. It is part of
// the HTTP contract.
type Source string

const (
	SourceCache     Source = "cache"
	SourceGenerated Source = "generated"
)

// GlobalScope is the cache scope used when a request has no owning identity.
const GlobalScope = ""

// CacheEntry is a persisted generation result. The (Scope, Key) pair is
// unique and an entry is never partially updated once written.
type CacheEntry struct {
	Scope     string          `json:"scope"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewCacheEntry creates an entry stamped with the current UTC time.
func NewCacheEntry(scope, key string, payload json.RawMessage) *CacheEntry {
	return &CacheEntry{
		Scope:     scope,
		Key:       key,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// GenerationRequest carries one CacheOrGenerate call.
type GenerationRequest struct {
	// Scope is the owning identity, or GlobalScope.
	Scope string
	// NormalizedKey is the canonical cache key for the parameters.
	NormalizedKey string
	// Kind names the generation endpoint (e.g. "roadmap").
	Kind string
	// Prompt is the text sent to the generation service on a miss.
	Prompt string
}
