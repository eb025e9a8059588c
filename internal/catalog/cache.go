package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/TiagoSD22/amigurumi-store/internal/domain"
)

const cachePrefix = "catalog:"

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_catalog_cache_lookups_total",
		Help: "Catalog cache lookups by result",
	},
	[]string{"result"},
)

// CachedCatalog is a read-through Redis cache in front of another Catalog.
// Only successful responses are stored. Redis failures fall back to the
// wrapped catalog.
type CachedCatalog struct {
	next   Catalog
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedCatalog wraps next with a cache whose entries live for ttl.
func NewCachedCatalog(next Catalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) List(ctx context.Context) ([]domain.Product, error) {
	return cachedList(ctx, c, "products:all", c.next.List)
}

func (c *CachedCatalog) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	return cachedList(ctx, c, "products:category:"+category.Token(), func(ctx context.Context) ([]domain.Product, error) {
		return c.next.ListByCategory(ctx, category)
	})
}

func (c *CachedCatalog) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	return cachedList(ctx, c, "products:featured", c.next.ListFeatured)
}

func (c *CachedCatalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	key := "product:" + id
	var p domain.Product
	if c.lookup(ctx, key, &p) {
		return &p, nil
	}
	got, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, got)
	return got, nil
}

// Invalidate drops every cached catalog entry.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection.
func (c *CachedCatalog) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func cachedList(ctx context.Context, c *CachedCatalog, key string, fetch func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	var products []domain.Product
	if c.lookup(ctx, key, &products) {
		if products == nil {
			products = []domain.Product{}
		}
		return products, nil
	}
	products, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, products)
	return products, nil
}

func (c *CachedCatalog) lookup(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues("miss").Inc()
		return false
	case err != nil:
		cacheLookups.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "catalog cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "catalog cache entry unreadable", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c *CachedCatalog) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, cachePrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
