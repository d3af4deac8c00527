package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pathway-api/internal/domain"
)

// maxUserIDLength bounds opaque user identifiers taken from requests.
const maxUserIDLength = 128

// getUserID extracts the user identifier from the userID path parameter or,
// failing that, the user_id query parameter. User IDs are opaque strings.
func getUserID(r *http.Request) (string, error) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	if userID == "" {
		return "", domain.ErrEmptyUserID
	}
	if len(userID) > maxUserIDLength {
		return "", domain.NewValidationError("user_id", "is too long")
	}
	return userID, nil
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format")
	}
	return id, nil
}
