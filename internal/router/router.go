// Package router sets up all HTTP routes and middleware chains for the
// certificate service. Routes are grouped under /api with shared actor
// identification; mutating endpoints require an identified actor.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certdesk/internal/handlers"
	"certdesk/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(certs *handlers.Certificates, templates *handlers.Templates, backgrounds *handlers.Backgrounds, dashboard *handlers.Dashboard, generateLimit int) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Operational endpoints, outside the API group.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Generation is the expensive path; it gets its own limiter.
	generateLimiter := middleware.NewRateLimiter(generateLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Actor)

		r.Route("/certificates", func(r chi.Router) {
			r.With(middleware.RequireActor, generateLimiter.Middleware).
				Post("/generate", certs.Generate)
			r.Get("/download/{id}", certs.Download)
			r.Get("/issued", certs.Issued)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", templates.List)
			r.Get("/{id}", templates.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActor)
				r.Post("/", templates.Create)
				r.Put("/{id}", templates.Update)
				r.Delete("/{id}", templates.Delete)
			})
		})

		r.Route("/backgrounds", func(r chi.Router) {
			r.Get("/", backgrounds.List)
			r.Get("/{id}", backgrounds.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActor)
				r.Post("/", backgrounds.Upload)
				r.Delete("/{id}", backgrounds.Delete)
			})
		})

		r.Get("/dashboard/stats", dashboard.Stats)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
