package api

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/pathway-api/internal/domain"
	"github.com/phrazzld/pathway-api/internal/generation"
)

// GenerateRequest defines the payload of the generation-backed endpoints.
type GenerateRequest struct {
	Role       string   `json:"role"       validate:"required,max=200"`
	Level      string   `json:"level"      validate:"max=100"`
	Region     string   `json:"region"     validate:"max=100"`
	Path       string   `json:"path"       validate:"max=200"`
	Qualifiers []string `json:"qualifiers" validate:"max=20,dive,max=200"`
}

// KeyParams converts the request into generation parameters.
func (r GenerateRequest) KeyParams() generation.KeyParams {
	return generation.KeyParams{
		Role:       r.Role,
		Level:      r.Level,
		Region:     r.Region,
		Path:       r.Path,
		Qualifiers: r.Qualifiers,
	}
}

// GenerateResponse is the envelope of generation-backed responses. Source is
// "cache" or "generated".
type GenerateResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Source  domain.Source   `json:"source"`
}

// NotifyRequest defines the payload of the notify endpoint.
type NotifyRequest struct {
	UserID    string `json:"user_id"    validate:"required,max=128"`
	EventName string `json:"event_name" validate:"omitempty,max=64,excludesall=\r\n"`
}

// NotifyResponse reports the user's live sink count after notifying.
type NotifyResponse struct {
	UserID string `json:"user_id"`
	Event  string `json:"event"`
	Sinks  int    `json:"sinks"`
}

// CreateItemRequest defines the payload for adding a progress item.
type CreateItemRequest struct {
	Title   string          `json:"title"   validate:"required,max=300"`
	Kind    string          `json:"kind"    validate:"max=64"`
	XP      int             `json:"xp"      validate:"gte=0,lte=100000"`
	Details json.RawMessage `json:"details"`
}

// ItemResponse is the API form of a progress item.
type ItemResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Kind      string          `json:"kind,omitempty"`
	Status    string          `json:"status"`
	XP        int             `json:"xp"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func itemToResponse(item *domain.ProgressItem) ItemResponse {
	return ItemResponse{
		ID:        item.ID.String(),
		UserID:    item.UserID,
		Title:     item.Title,
		Kind:      item.Kind,
		Status:    string(item.Status),
		XP:        item.XP,
		Details:   item.Details,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
