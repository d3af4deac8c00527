package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemStatus represents the state of a progress item.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusCompleted ItemStatus = "completed"
)

// ProgressItem is one unit of a user's mutable progress state (a roadmap
// step, a saved course, a finished challenge). Snapshots are assembled
// from these.
type ProgressItem struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Kind      string          `json:"kind"`
	Status    ItemStatus      `json:"status"`
	XP        int             `json:"xp"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewProgressItem creates a pending item for userID.
// Returns an error if validation fails.
func NewProgressItem(userID, title, kind string, xp int, details json.RawMessage) (*ProgressItem, error) {
	now := time.Now().UTC()
	item := &ProgressItem{
		ID:        uuid.New(),
		UserID:    strings.TrimSpace(userID),
		Title:     strings.TrimSpace(title),
		Kind:      strings.TrimSpace(kind),
		Status:    ItemStatusPending,
		XP:        xp,
		Details:   details,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks if the ProgressItem has valid data.
func (p *ProgressItem) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty")
	}
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if p.Title == "" {
		return NewValidationError("title", "cannot be empty")
	}
	if p.XP < 0 {
		return NewValidationError("xp", "cannot be negative")
	}
	if p.Status != ItemStatusPending && p.Status != ItemStatusCompleted {
		return ErrInvalidItemStatus
	}
	if len(p.Details) > 0 && !json.Valid(p.Details) {
		return ErrInvalidDetails
	}
	return nil
}

// Complete marks the item completed.
func (p *ProgressItem) Complete(now time.Time) {
	p.Status = ItemStatusCompleted
	p.UpdatedAt = now.UTC()
}
