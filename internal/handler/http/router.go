// Package http exposes the storefront pages over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TiagoSD22/amigurumi-store/pkg/health"
	"github.com/TiagoSD22/amigurumi-store/pkg/middleware"
)

// RouterConfig holds the tunables of the middleware stack.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered. ctx
// bounds background work owned by the middleware.
func NewRouter(
	ctx context.Context,
	storefrontHandler *StorefrontHandler,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}
	r.Use(chimw.Compress(5))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Get("/home", storefrontHandler.Home)
		r.Get("/products", storefrontHandler.Products)
		r.Get("/products/{id}", storefrontHandler.Product)
		r.Get("/category/{category}", storefrontHandler.Category)
	})

	return r
}
