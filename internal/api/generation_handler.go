package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pathway-api/internal/api/shared"
	"github.com/phrazzld/pathway-api/internal/generation"
	"github.com/phrazzld/pathway-api/internal/platform/logger"
)

// Generator serves generation-backed requests.
type Generator interface {
	Generate(ctx context.Context, scope, kind string, p generation.KeyParams) (*generation.Result, error)
}

// GenerationHandler handles the generation-backed endpoints.
type GenerationHandler struct {
	generator Generator
	validator *validator.Validate
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generator Generator) *GenerationHandler {
	return &GenerationHandler{
		generator: generator,
		validator: validator.New(),
	}
}

// Generate returns the handler for POST /api/generate/{kind}. The response
// carries the payload and whether it came from the cache.
func (h *GenerationHandler) Generate(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
			return
		}
		if err := h.validator.Struct(req); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}

		scope := shared.GetScope(r.Context())
		result, err := h.generator.Generate(r.Context(), scope, kind, req.KeyParams())
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}

		logger.FromContext(r.Context()).Debug("served generation request",
			"kind", kind,
			"source", result.Source,
			"scoped", scope != "")

		shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{
			Success: true,
			Data:    result.Data,
			Source:  result.Source,
		})
	}
}
