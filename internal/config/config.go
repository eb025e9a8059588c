package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/TiagoSD22/amigurumi-store/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	PageWaitSeconds int `env:"PAGE_WAIT_TIMEOUT_SECONDS" envDefault:"15"`

	// Catalog service
	CatalogBaseURL        string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8000/api"`
	CatalogTimeoutSeconds int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"10"`
	CatalogMaxRetries     int    `env:"CATALOG_MAX_RETRIES" envDefault:"0"`

	// Circuit breaker
	CBFailureRatio   float64 `env:"CB_FAILURE_RATIO" envDefault:"0.6"`
	CBMinRequests    uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`
	CBTimeoutSeconds int     `env:"CB_TIMEOUT_SECONDS" envDefault:"15"`

	// Catalog cache
	CacheEnabled    bool   `env:"CATALOG_CACHE_ENABLED" envDefault:"false"`
	CacheTTLSeconds int    `env:"CATALOG_CACHE_TTL_SECONDS" envDefault:"300"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`

	// Event sink
	KafkaEventsEnabled bool     `env:"EVENTS_KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsTopic        string   `env:"EVENTS_TOPIC" envDefault:"storefront.events"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Rate limiting and CORS
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CatalogTimeout is the per-request timeout for catalog calls.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

// PageWaitTimeout bounds how long a page request waits for its data.
func (c *Config) PageWaitTimeout() time.Duration {
	return time.Duration(c.PageWaitSeconds) * time.Second
}

// CacheTTL is the lifetime of cached catalog responses.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CBTimeout is how long the breaker stays open.
func (c *Config) CBTimeout() time.Duration {
	return time.Duration(c.CBTimeoutSeconds) * time.Second
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_BASE_URL: %q", c.CatalogBaseURL)
	}
	if c.CatalogTimeoutSeconds < 1 {
		return fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be positive, got %d", c.CatalogTimeoutSeconds)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative, got %d", c.CatalogMaxRetries)
	}
	if c.PageWaitSeconds < 1 {
		return fmt.Errorf("PAGE_WAIT_TIMEOUT_SECONDS must be positive, got %d", c.PageWaitSeconds)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %g", c.CBFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be in [0, 1], got %g", c.OTELSampleRate)
	}
	if c.CacheEnabled && c.CacheTTLSeconds < 1 {
		return fmt.Errorf("CATALOG_CACHE_TTL_SECONDS must be positive when the cache is enabled, got %d", c.CacheTTLSeconds)
	}
	if c.KafkaEventsEnabled && (len(c.KafkaBrokers) == 0 || c.EventsTopic == "") {
		return errors.New("KAFKA_BROKERS and EVENTS_TOPIC are required when EVENTS_KAFKA_ENABLED is set")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimitRPS)
	}
	return nil
}
