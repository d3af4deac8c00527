// Package domain contains the core entities of the service: generation cache
// entries, progress items and the snapshots built from them. It is
// independent of any storage or delivery mechanism.
package domain
