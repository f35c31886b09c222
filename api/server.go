/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

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
  4. CORS:       Cross-origin requests for the dashboard

ROUTE GROUPS:
  /api/roster/*    Duty resolution and overrides
  /api/admin/*     Administrative schedule
  /api/holidays    Holiday calendar
  /api/leave/*     Leave allotments
  /api/quotas/*    Monthly quota ledger
  /api/live        Websocket change stream

SECURITY NOTE:
  No authentication middleware; the engine sits behind the battalion's
  reverse proxy which handles auth.

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
		// Roster routes
		r.Route("/roster/{unit}", func(r chi.Router) {
			r.Get("/", h.ResolveRange)
			r.Get("/{date}", h.ResolveDay)
			r.Put("/{date}", h.UpsertAlteration)
			r.Delete("/{date}", h.RemoveAlteration)
		})

		// Administrative schedule
		r.Get("/admin/schedule", h.AdminSchedule)
		r.Get("/holidays", h.ListHolidays)

		// Leave routes
		r.Route("/leave/{type}", func(r chi.Router) {
			r.Get("/", h.ListLeave)
			r.Post("/", h.UpsertLeaveRecord)
			r.Put("/{person}/{year}/installments/{n}", h.UpsertLeaveInstallment)
			r.Delete("/{id}", h.DeleteLeave)
		})

		// Quota routes
		r.Route("/quotas", func(r chi.Router) {
			r.Post("/refetch", h.RefetchQuota)
			r.Get("/{type}", h.GetQuota)
		})

		// Live change stream
		if h.LiveFeed != nil {
			r.Get("/live", h.LiveFeed.Serve)
		}
	})

	return r
}
