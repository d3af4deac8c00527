// Package sqlite provides embedded SQLite implementations of the storage
// interfaces in internal/store, backed by the pure Go modernc.org/sqlite
// driver. It suits single-node deployments and tests that need a real
// database without a server.
//
// Timestamps are stored as Unix milliseconds and JSON columns as TEXT.
package sqlite
