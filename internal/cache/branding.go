package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lookprice/lookprice/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BrandingCache fronts the public store-branding lookup with Redis. The scan
// page is the one genuinely hot path — every customer scan resolves a slug —
// and branding changes rarely, so a short TTL plus explicit invalidation on
// branding updates keeps it correct.
//
// The cache is strictly an accelerator: a nil *BrandingCache is valid and
// every method no-ops, so the server runs unchanged without Redis. Redis
// errors are logged and treated as misses — a cache outage must never take
// the scan page down.
type BrandingCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis from a redis:// URL. An empty URL returns (nil, nil):
// caching disabled.
func New(ctx context.Context, redisURL string, logger *zap.Logger) (*BrandingCache, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", opts.Addr))
	return &BrandingCache{
		rdb:    rdb,
		ttl:    5 * time.Minute,
		logger: logger,
	}, nil
}

func (c *BrandingCache) Close() {
	if c == nil {
		return
	}
	c.rdb.Close()
}

func key(slug string) string {
	return "branding:" + slug
}

// Get returns the cached branding for a slug, or ok=false on miss (or when
// the cache is disabled or unreachable).
func (c *BrandingCache) Get(ctx context.Context, slug string) (*models.Branding, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("branding cache get failed", zap.String("slug", slug), zap.Error(err))
		}
		return nil, false
	}

	var b models.Branding
	if err := json.Unmarshal(raw, &b); err != nil {
		// A corrupt entry is dropped so the next lookup repopulates it.
		c.rdb.Del(ctx, key(slug))
		return nil, false
	}
	return &b, true
}

func (c *BrandingCache) Set(ctx context.Context, slug string, b models.Branding) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(slug), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("branding cache set failed", zap.String("slug", slug), zap.Error(err))
	}
}

// Invalidate drops a slug's entry. Called after any store or branding update
// so the public page reflects the change on the next scan, not after TTL.
func (c *BrandingCache) Invalidate(ctx context.Context, slug string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, key(slug)).Err(); err != nil {
		c.logger.Warn("branding cache invalidate failed", zap.String("slug", slug), zap.Error(err))
	}
}
