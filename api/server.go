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
 4. CORS:       Cross-origin requests for frontend
 5. JWT auth:   Everything under /api except token issuance

ROUTE GROUPS:

	/api/auth/token       Token issuance (public)
	/api/packages/*       Package catalog, capacity, reviews
	/api/bookings/*       Booking lifecycle
	/api/wallet           Wallet balance and history
	/api/notifications/*  In-app notification feed
	/api/admin/*          Users, reports, reconciliation, audit trail
	/metrics              Prometheus (public)
	/health               Liveness (public)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	// Public endpoints
	r.Post("/api/auth/token", h.IssueToken)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(h.Tokens.Middleware)

		r.Route("/api/packages", func(r chi.Router) {
			r.Get("/", h.ListPackages)
			r.Post("/", h.CreatePackage)
			r.Get("/{id}", h.GetPackage)
			r.Put("/{id}", h.UpdatePackage)
			r.Get("/{id}/capacity", h.GetCapacity)
			r.Get("/{id}/reviews", h.ListPackageReviews)
			r.Post("/{id}/reviews", h.SavePackageReview)
		})

		r.Route("/api/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBooking)
			r.Post("/{id}/payment", h.ConfirmPayment)
			r.Post("/{id}/cancel", h.CancelBooking)
			r.Put("/{id}/status", h.SetBookingStatus)
		})

		r.Get("/api/wallet", h.GetWallet)

		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/users", h.ListUsers)
			r.Put("/users/{id}/role", h.SetUserRole)
			r.Get("/reports/sales", h.SalesReport)
			r.Get("/reconcile/{userId}", h.Reconcile)
			r.Get("/activity", h.ListActivity)
		})
	})

	return r
}
