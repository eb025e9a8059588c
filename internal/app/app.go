package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TiagoSD22/amigurumi-store/internal/catalog"
	"github.com/TiagoSD22/amigurumi-store/internal/config"
	"github.com/TiagoSD22/amigurumi-store/internal/events"
	handler "github.com/TiagoSD22/amigurumi-store/internal/handler/http"
	"github.com/TiagoSD22/amigurumi-store/pkg/cache"
	"github.com/TiagoSD22/amigurumi-store/pkg/health"
	"github.com/TiagoSD22/amigurumi-store/pkg/httpclient"
	pkgkafka "github.com/TiagoSD22/amigurumi-store/pkg/kafka"
	"github.com/TiagoSD22/amigurumi-store/pkg/middleware"
	"github.com/TiagoSD22/amigurumi-store/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// ctx bounds startup checks and the lifetime of background middleware work.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// Tracing.
	tracingCfg := tracing.DefaultConfig(serviceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	shutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerShutdown = shutdown

	// Catalog client behind a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.CatalogTimeout()
	clientCfg.MaxRetries = cfg.CatalogMaxRetries
	cbCfg := httpclient.DefaultCircuitBreakerConfig("catalog")
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests
	cbCfg.Timeout = cfg.CBTimeout()
	breaker := httpclient.NewCircuitBreakerClient(httpclient.New(clientCfg), cbCfg, logger)
	httpCatalog := catalog.NewHTTPCatalog(breaker, cfg.CatalogBaseURL, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterOptional("catalog", httpCatalog.Ping)

	var products catalog.Catalog = httpCatalog
	if cfg.CacheEnabled {
		products = a.withCache(ctx, httpCatalog, healthHandler)
	}

	// Event sink.
	var recorder events.Recorder = events.NewLogRecorder(logger)
	if cfg.KafkaEventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers, cfg.EventsTopic), logger)
		recorder = events.Multi{recorder, events.NewKafkaRecorder(a.producer, serviceName, logger)}
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka event sink enabled",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.EventsTopic),
		)
	}

	// HTTP router.
	storefrontHandler := handler.NewStorefrontHandler(products, recorder, cfg.PageWaitTimeout(), logger)
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(ctx, storefrontHandler, healthHandler, handler.RouterConfig{
		CORS:           corsCfg,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		RequestTimeout: cfg.PageWaitTimeout() + 5*time.Second,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.PageWaitTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// withCache puts the Redis cache in front of next. An unreachable Redis is
// not fatal: the service starts uncached.
func (a *App) withCache(ctx context.Context, next catalog.Catalog, h *health.Handler) catalog.Catalog {
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Addr = a.cfg.RedisAddr
	redisCfg.Password = a.cfg.RedisPassword
	redisCfg.DB = a.cfg.RedisDB

	client, err := cache.NewRedisClient(ctx, redisCfg)
	if err != nil {
		a.logger.Warn("catalog cache disabled", slog.String("error", err.Error()))
		return next
	}
	a.redisClient = client
	cached := catalog.NewCachedCatalog(next, client, a.cfg.CacheTTL(), a.logger)
	h.RegisterOptional("redis", cached.Ping)
	a.logger.Info("catalog cache enabled",
		slog.String("addr", redisCfg.Addr),
		slog.Duration("ttl", a.cfg.CacheTTL()),
	)
	return cached
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("catalog", a.cfg.CatalogBaseURL),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
