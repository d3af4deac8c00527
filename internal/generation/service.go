package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
	"github.com/phrazzld/pathway-api/internal/store"
	"golang.org/x/sync/singleflight"
)

// Result is the outcome of a generation-backed request.
type Result struct {
	Data   json.RawMessage
	Source domain.Source
}

// Service serves generation-backed requests from the cache, calling the
// generation client only on a miss. It is the only writer of the cache.
type Service struct {
	cache      store.CacheStore
	client     Client
	normalizer *Normalizer
	extractor  *Extractor
	prompts    *PromptBuilder
	inflight   singleflight.Group
	logger     *slog.Logger
}

// NewService creates a Service. schemaVersion is embedded in every cache key.
func NewService(
	cache store.CacheStore,
	client Client,
	schemaVersion string,
	logger *slog.Logger,
) (*Service, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: cache store cannot be nil", ErrInvalidConfig)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: generation client cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}

	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	return &Service{
		cache:      cache,
		client:     client,
		normalizer: NewNormalizer(schemaVersion),
		extractor:  NewExtractor(),
		prompts:    prompts,
		logger:     logger.With(slog.String("component", "generation_service")),
	}, nil
}

// Generate normalizes p into a key for kind, renders the kind's prompt and
// runs CacheOrGenerate within scope.
func (s *Service) Generate(ctx context.Context, scope, kind string, p KeyParams) (*Result, error) {
	if !s.prompts.Has(kind) {
		return nil, domain.NewValidationError("kind", fmt.Sprintf("unsupported generation kind %q", kind))
	}

	key, err := s.normalizer.Key(kind, p)
	if err != nil {
		return nil, err
	}

	prompt, err := s.prompts.Build(kind, p)
	if err != nil {
		return nil, err
	}

	return s.CacheOrGenerate(ctx, domain.GenerationRequest{
		Scope:         scope,
		NormalizedKey: key,
		Kind:          kind,
		Prompt:        prompt,
	})
}

// CacheOrGenerate returns the cached payload for req's key, or generates,
// extracts and caches it. Concurrent calls for the same scope and key share a
// single generation call.
//
// A generation call that has started runs to completion even if ctx is
// cancelled, so its result can still be cached for the next caller. A caller
// whose ctx ends while waiting returns ctx.Err() without the result.
func (s *Service) CacheOrGenerate(ctx context.Context, req domain.GenerationRequest) (*Result, error) {
	if req.NormalizedKey == "" {
		return nil, domain.NewValidationError("key", "is required")
	}
	if req.Prompt == "" {
		return nil, domain.NewValidationError("prompt", "is required")
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("scope", req.Scope),
		slog.String("cache_key", req.NormalizedKey),
	)

	if res, ok := s.lookup(ctx, log, req); ok {
		return res, nil
	}

	flightKey := req.Scope + "\x00" + req.NormalizedKey
	ch := s.inflight.DoChan(flightKey, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), log, req)
	})

	var flight singleflight.Result
	select {
	case flight = <-ch:
	case <-ctx.Done():
		// The flight keeps running and caches its result for later callers.
		log.Debug("caller left before generation finished", slog.Any("error", ctx.Err()))
		return nil, ctx.Err()
	}
	if flight.Err != nil {
		return nil, flight.Err
	}
	if flight.Shared {
		log.Debug("joined in-flight generation")
	}

	res := flight.Val.(*Result)
	// Callers share the leader's result; hand each its own copy.
	return &Result{Data: slices.Clone(res.Data), Source: res.Source}, nil
}

func (s *Service) lookup(ctx context.Context, log *slog.Logger, req domain.GenerationRequest) (*Result, bool) {
	entry, err := s.cache.Get(ctx, req.Scope, req.NormalizedKey)
	switch {
	case err == nil:
		log.Debug("cache hit")
		return &Result{Data: entry.Payload, Source: domain.SourceCache}, true
	case store.IsNotFoundError(err):
		return nil, false
	default:
		// A broken cache read degrades to a miss rather than failing the request.
		log.Warn("cache lookup failed, treating as miss", slog.Any("error", err))
		return nil, false
	}
}

// generate runs once per in-flight key.
func (s *Service) generate(ctx context.Context, log *slog.Logger, req domain.GenerationRequest) (*Result, error) {
	// An earlier flight may have filled the cache between our miss and now.
	if res, ok := s.lookup(ctx, log, req); ok {
		return res, nil
	}

	log.Info("cache miss, calling generation service", slog.String("kind", req.Kind))

	text, err := s.client.Generate(ctx, req.Prompt)
	if err != nil {
		if !errors.Is(err, ErrUpstreamUnavailable) && !errors.Is(err, ErrContentBlocked) {
			err = fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		log.Error("generation call failed", slog.Any("error", err))
		return nil, err
	}

	payload, tier, err := s.extractor.ExtractWithTier(text)
	if err != nil {
		log.Error("failed to extract structured output",
			slog.Any("error", err),
			slog.Int("response_length", len(text)))
		return nil, err
	}
	log.Debug("extracted generation output", slog.String("tier", tier))

	inserted, err := s.cache.Insert(ctx, domain.NewCacheEntry(req.Scope, req.NormalizedKey, payload))
	if err != nil {
		log.Error("failed to persist generation result, returning uncached payload",
			slog.Any("error", err))
		return &Result{Data: payload, Source: domain.SourceGenerated}, nil
	}

	if !inserted {
		// Another writer won the insert; serve the stored payload so the key
		// keeps yielding one value.
		entry, err := s.cache.Get(ctx, req.Scope, req.NormalizedKey)
		if err == nil {
			log.Debug("cache entry already present, serving stored payload")
			return &Result{Data: entry.Payload, Source: domain.SourceCache}, nil
		}
		log.Warn("cache entry reported present but could not be read", slog.Any("error", err))
	}

	return &Result{Data: payload, Source: domain.SourceGenerated}, nil
}
