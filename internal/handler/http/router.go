package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deliverzler/functions/pkg/health"
	"github.com/deliverzler/functions/pkg/middleware"
)

const component = "callables"

// RateLimit is the per-IP request budget applied to the auth and callable
// routes. A non-positive RPS disables it.
type RateLimit struct {
	RPS   float64
	Burst int
}

// NewRouter creates a chi router with the callable, auth and operational
// routes. The token route is mounted only when tokens is non-nil.
func NewRouter(
	admins AdminService,
	verify middleware.TokenVerifier,
	tokens TokenIssuer,
	limit RateLimit,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(component))
	r.Use(middleware.PrometheusMetrics(component))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.RateLimit(limit.RPS, limit.Burst, logger)

	if tokens != nil {
		authHandler := NewAuthHandler(tokens, logger)
		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Use(limiter)
			r.Use(ContentTypeJSON)
			r.Use(middleware.RequestLogger(logger))

			r.Post("/token", authHandler.Token)
		})
	}

	callables := NewCallableHandler(admins, logger)
	r.Route("/api/v1/callables", func(r chi.Router) {
		r.Use(limiter)
		r.Use(ContentTypeJSON)
		r.Use(middleware.Authenticate(verify))
		r.Use(middleware.RequestLogger(logger))

		r.Post("/createAdmin", callables.CreateAdmin)
		r.Post("/deleteAdmin", callables.DeleteAdmin)
		r.Post("/bootstrapSuperAdmin", callables.BootstrapSuperAdmin)
	})

	return r
}
