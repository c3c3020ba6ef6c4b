/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/contracts/*   Contracts, their entries and monthly summaries
  /api/entries/*     Entry update/delete by id
  /api/settings      Reference grid and net coefficient

SECURITY NOTE:
  No authentication middleware. This is a single-household tool; all
  endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Put("/{id}", h.UpdateContract)
			r.Delete("/{id}", h.DeleteContract)
			r.Get("/{id}/entries", h.ListEntries)
			r.Post("/{id}/entries", h.UpsertEntry)
			r.Get("/{id}/summary", h.GetSummary)
		})

		// Entry routes (by entry id)
		r.Route("/entries", func(r chi.Router) {
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})
	})

	return r
}
