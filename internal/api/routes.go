package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/newsletter/internal/rate"
)

// SetupRoutes configures the API routes. The rate limiter applies only to
// the public signup endpoint; it may be nil to disable limiting.
func SetupRoutes(h *Handlers, limiter *rate.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/subscriptions", func(r chi.Router) {
		r.With(RateLimit(limiter)).Post("/", h.CreateSubscription)
		r.Get("/confirm", h.ConfirmSubscription)
	})

	return r
}
