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
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP behind proxies
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/leave-types/*    Leave category catalog
  /api/employees/*      Per-employee balances and history
  /api/applications/*   Submit / decide / cancel
  /api/activity         Audit trail
  /api/health           Liveness probe

SECURITY NOTE:
  Actor identity comes from headers (see handlers.go); authentication and
  header stamping belong to the fronting gateway, not this service.

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
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID", "X-Actor-ID", "X-Actor-Role", "X-Employee-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Leave type catalog
		r.Route("/leave-types", func(r chi.Router) {
			r.Get("/", h.ListLeaveTypes)
			r.Post("/", h.CreateLeaveType)
			r.Post("/seed", h.SeedLeaveTypes)
			r.Get("/{id}", h.GetLeaveType)
			r.Put("/{id}", h.UpdateLeaveType)
			r.Post("/{id}/deactivate", h.DeactivateLeaveType)
			r.Delete("/{id}", h.DeleteLeaveType)
		})

		// Employee views
		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/balances", h.GetBalances)
			r.Get("/applications", h.ListEmployeeApplications)
		})

		// Application lifecycle
		r.Route("/applications", func(r chi.Router) {
			r.Post("/", h.SubmitApplication)
			r.Get("/pending", h.ListPendingApplications)
			r.Get("/{id}", h.GetApplication)
			r.Post("/{id}/approve", h.ApproveApplication)
			r.Post("/{id}/reject", h.RejectApplication)
			r.Post("/{id}/cancel", h.CancelApplication)
		})

		// Audit trail
		r.Get("/activity", h.ListActivity)
	})

	return r
}
