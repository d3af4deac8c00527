// Package store defines interfaces for data persistence operations: the
// generation cache and the progress items behind live snapshots. Concrete
// implementations live under internal/platform (postgres and sqlite).
package store
