// Package generation implements the cache-backed content generation
// pipeline. Requests are reduced to a canonical cache key (Normalizer),
// served from the generation cache when possible, and otherwise sent to an
// external LLM (Client). The free-text answer is reduced to a JSON value by
// an ordered chain of parse attempts (Extractor) before it is cached.
//
// Service.CacheOrGenerate guarantees that concurrent requests for the same
// unseen key share a single upstream call.
package generation
