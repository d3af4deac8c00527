package domain

import "time"

// Totals are the derived aggregates of a snapshot.
type Totals struct {
	// XP is the sum of XP over completed items.
	XP        int `json:"xp"`
	Items     int `json:"items"`
	Completed int `json:"completed"`
}

// Snapshot is the full current view of a user's progress pushed to live
// sinks. It is recomputed on every use and never stored.
type Snapshot struct {
	Items     []ProgressItem `json:"items"`
	Totals    Totals         `json:"totals"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewSnapshot assembles a snapshot from items. Items is never nil in the
// result so it always serializes as a JSON array.
func NewSnapshot(items []ProgressItem, now time.Time) *Snapshot {
	if items == nil {
		items = []ProgressItem{}
	}

	totals := Totals{Items: len(items)}
	for _, item := range items {
		if item.Status == ItemStatusCompleted {
			totals.Completed++
			totals.XP += item.XP
		}
	}

	return &Snapshot{
		Items:     items,
		Totals:    totals,
		Timestamp: now.UTC(),
	}
}
