package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pathway-api/internal/api/shared"
	"github.com/phrazzld/pathway-api/internal/service"
)

// ProgressHandler handles progress item requests. Every mutation notifies
// the user's live streams.
type ProgressHandler struct {
	progress  service.ProgressService
	validator *validator.Validate
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progress service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		validator: validator.New(),
	}
}

// ListItems handles GET /api/users/{userID}/items.
func (h *ProgressHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.progress.ListItems(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list items")
		return
	}

	resp := make([]ItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, itemToResponse(&items[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateItem handles POST /api/users/{userID}/items.
func (h *ProgressHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.progress.AddItem(r.Context(), userID, service.NewItem{
		Title:   req.Title,
		Kind:    req.Kind,
		XP:      req.XP,
		Details: req.Details,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// CompleteItem handles POST /api/users/{userID}/items/{itemID}/complete.
func (h *ProgressHandler) CompleteItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	itemID, err := getPathUUID(r, "itemID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.progress.CompleteItem(r.Context(), userID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}
