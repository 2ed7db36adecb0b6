package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanseo/rosetta-api/internal/api"
	apiMiddleware "github.com/hanseo/rosetta-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	translationHandler := api.NewTranslationHandler(app.translationService, app.logger)
	historyHandler := api.NewHistoryHandler(app.historyService, app.logger)
	systemHandler := api.NewSystemHandler(version, app.updateChecker, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Translation endpoints
		r.Post("/translations", translationHandler.Translate)
		r.Delete("/translations", translationHandler.CancelAll)
		r.Get("/translations/{id}", translationHandler.GetTask)
		r.Delete("/translations/{id}", translationHandler.CancelTask)
		r.Get("/translations/{id}/events", translationHandler.StreamTaskEvents)
		r.Get("/events", translationHandler.StreamEvents)

		// History endpoints
		r.Get("/history", historyHandler.List)
		r.Delete("/history", historyHandler.Clear)
		r.Get("/history/{id}", historyHandler.Get)
		r.Delete("/history/{id}", historyHandler.Delete)

		// Metadata endpoints
		r.Get("/languages", translationHandler.Languages)
		r.Get("/version", systemHandler.Version)
	})

	r.Get("/health", systemHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
