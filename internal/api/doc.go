// Package api handles incoming HTTP requests: the generation-backed
// endpoints, the live-sync stream with its notify and stats endpoints, and
// the progress item endpoints. Handlers decode and validate requests, call
// the services, and map errors to the shared JSON error envelope.
package api
