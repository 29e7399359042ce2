package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/drill-api/internal/api"
	apiMiddleware "github.com/phrazzld/drill-api/internal/api/middleware"
	"github.com/phrazzld/drill-api/internal/catalog"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	masteryHandler := api.NewMasteryHandler(app.masteryService, app.logger)
	stressHandler := api.NewStressHandler(app.trainingService, catalog.Catalog{}, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Lesson mastery endpoints
		r.Get("/lessons/mastery", masteryHandler.ListMastery)
		r.Post("/lessons/{lessonID}/attempts", masteryHandler.RecordAttempt)
		r.Get("/lessons/{lessonID}/mastery", masteryHandler.GetMastery)
		r.Get("/lessons/{lessonID}/levels/{level}", masteryHandler.GetLevelProgress)
		r.Get("/lessons/{lessonID}/levels/{level}/access", masteryHandler.CanAccessLevel)

		// Stress training endpoints
		r.Post("/stress/sessions", stressHandler.StartSession)
		r.Get("/stress/sessions/current", stressHandler.GetCurrentSession)
		r.Put("/stress/sessions/current/metrics", stressHandler.UpdateSessionMetrics)
		r.Post("/stress/sessions/current/complete", stressHandler.CompleteSession)
		r.Get("/stress/metrics", stressHandler.GetMetrics)
		r.Get("/stress/levels/{level}/access", stressHandler.CanAttemptLevel)
		r.Get("/stress/scenarios", stressHandler.ListScenarios)

		// Baseline drill endpoints
		r.Post("/drills/attempts", stressHandler.RecordDrillAttempt)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
