// Package router sets up the HTTP routes and middleware chain of the
// signage API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"signage/internal/handlers"
	"signage/internal/middleware"
)

// New creates the Chi router with all middleware and routes wired up.
// limiter may be nil to disable rate limiting.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Mutations)
		}

		r.Route("/templates/{id}", func(r chi.Router) {
			r.Get("/", api.GetTemplate)
			r.Patch("/", api.PatchTemplate)
			r.Get("/blocks", api.ListBlocks)
			r.Get("/layout", api.Layout)
			r.Post("/merge", api.Merge)
		})

		r.Route("/template-blocks/{id}", func(r chi.Router) {
			r.Patch("/", api.PatchBlock)
			r.Delete("/", api.DeleteBlock)
			r.Delete("/contents", api.ResetBlock)
		})

		r.Route("/template-block-contents", func(r chi.Router) {
			r.Post("/", api.CreateContent)
			r.Get("/block/{blockId}", api.ListContents)
			r.Get("/{id}", api.GetContent)
			r.Patch("/{id}", api.PatchContent)
			r.Delete("/{id}", api.DeleteContent)
			r.Get("/{id}/timeline", api.Timeline)
		})

		r.Post("/media/probe", api.ProbeMedia)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
