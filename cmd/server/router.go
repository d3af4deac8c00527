package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/pathway-api/internal/api"
	apiMiddleware "github.com/phrazzld/pathway-api/internal/api/middleware"
	"github.com/phrazzld/pathway-api/internal/generation"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	generationHandler := api.NewGenerationHandler(app.generationService)
	streamHandler := api.NewStreamHandler(
		app.registry,
		app.snapshots,
		app.notifier,
		app.heartbeat(),
		app.config.Stream.SinkBuffer,
	)
	progressHandler := api.NewProgressHandler(app.progressService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuthenticate)
			r.Post("/generate/roadmap", generationHandler.Generate(generation.KindRoadmap))
			r.Post("/generate/insights", generationHandler.Generate(generation.KindInsights))
		})

		r.Get("/stream", streamHandler.Stream)
		r.Get("/stream/stats", streamHandler.Stats)
		r.Post("/notify", streamHandler.Notify)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/stream", streamHandler.Stream)
			r.Get("/items", progressHandler.ListItems)
			r.Post("/items", progressHandler.CreateItem)
			r.Post("/items/{itemID}/complete", progressHandler.CompleteItem)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
