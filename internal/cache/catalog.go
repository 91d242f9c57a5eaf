// Package cache keeps the read-mostly product listing in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"tableorder/internal/domain"
	"tableorder/internal/logging"
)

const catalogKey = "tableorder:catalog:products"

// Catalog caches the full product list. Misses and cache failures are
// reported as ok=false so callers fall back to the database.
type Catalog interface {
	Get(ctx context.Context) ([]domain.Product, bool)
	Set(ctx context.Context, products []domain.Product)
	Invalidate(ctx context.Context)
}

type redisCatalog struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis builds a Redis-backed catalog cache.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) Catalog {
	return &redisCatalog{client: client, ttl: ttl, logger: logging.OrNop(logger).Named("catalog_cache")}
}

// NewRedisClient connects to addr and verifies it with a ping.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *redisCatalog) Get(ctx context.Context) ([]domain.Product, bool) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("get", zap.Error(err))
		}
		return nil, false
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.logger.Warn("decode", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *redisCatalog) Set(ctx context.Context, products []domain.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("encode", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, catalogKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("set", zap.Error(err))
	}
}

func (c *redisCatalog) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		c.logger.Warn("invalidate", zap.Error(err))
	}
}

// Nop never caches.
type Nop struct{}

func (Nop) Get(context.Context) ([]domain.Product, bool) { return nil, false }
func (Nop) Set(context.Context, []domain.Product)        {}
func (Nop) Invalidate(context.Context)                   {}
