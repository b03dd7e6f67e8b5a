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
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured request logging (zerolog)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for frontend
  5. Authenticator: Bearer token to principal

ROUTE GROUPS:
  /api/employees/*   Employee management
  /api/attendance    Attendance entry
  /api/wages/*       Wage calculation and payment
  /api/reports/*     Aggregate reporting
  /api/roles, /me    Role grants and identity
  /api/scenarios/*   Demo scenarios (when enabled)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Auth and logging middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	JWTSecret   []byte
	CORSOrigins []string
	Scenarios   bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(Authenticator(opts.JWTSecret))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/attendance", h.ListAttendance)
			r.Get("/{id}/wages", h.ListEmployeeWages)
		})

		// Attendance routes
		r.Post("/attendance", h.CreateAttendance)

		// Wage routes
		r.Route("/wages", func(r chi.Router) {
			r.Get("/", h.ListWages)
			r.Post("/calculate", h.CalculateWage)
			r.Get("/{id}", h.GetWage)
			r.Post("/{id}/pay", h.PayWage)
		})

		// Report routes
		r.Get("/reports/summary", h.GetSummary)

		// Role routes
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.ListRoles)
			r.Post("/", h.GrantRole)
		})
		r.Get("/me", h.Me)

		// Scenario routes (dev/demo only)
		if opts.Scenarios {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
				r.Post("/reset", h.ResetDatabase)
			})
		}
	})

	return r
}
