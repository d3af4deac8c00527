// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in the internal/store package, together with the
// embedded goose migrations that create their schema.
//
// Stores accept a store.DBTX so the same implementation serves both a pooled
// *sql.DB and a *sql.Tx. Connections are opened through the pgx stdlib driver.
package postgres
