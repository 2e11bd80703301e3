package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/agents"
	"github.com/eldtechnologies/dispatch/internal/api/middleware"
	"github.com/eldtechnologies/dispatch/internal/cache"
	"github.com/eldtechnologies/dispatch/internal/handlers"
	"github.com/eldtechnologies/dispatch/internal/store"
)

// Config holds the router's tuning knobs.
type Config struct {
	MessageRateLimit  int
	MessageRateWindow time.Duration
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, agentRouter *agents.Router, kv store.KV, records store.RecordStore, cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - the surrounding application calls from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(agentRouter, kv, records)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/health", h.Health)
	r.Get("/capabilities", h.Capabilities)

	// The orchestration entry point, rate limited per client IP
	r.Group(func(r chi.Router) {
		limiter := cache.NewRateLimiter(kv, "ratelimit:api", logger)
		r.Use(middleware.RateLimit(limiter, cfg.MessageRateLimit, cfg.MessageRateWindow, logger))

		r.Post("/message", h.HandleMessage)
	})

	return r
}
