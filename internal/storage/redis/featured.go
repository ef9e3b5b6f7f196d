package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecomloop/storefront/internal/domain/product"
)

const (
	featuredKey = "featured_products"
	featuredTTL = 7 * 24 * time.Hour
)

var _ product.Repository = (*FeaturedCache)(nil)

// FeaturedCache decorates a product repository with a Redis read-through cache
// for the featured list. The featured set changes rarely, so the entry lives
// for a week. All other reads pass straight to the inner repository.
type FeaturedCache struct {
	inner  product.Repository
	client *redis.Client
}

// NewFeaturedCache wraps inner with the featured products cache.
func NewFeaturedCache(inner product.Repository, client *redis.Client) *FeaturedCache {
	return &FeaturedCache{inner: inner, client: client}
}

// List passes through to the inner repository.
func (c *FeaturedCache) List(ctx context.Context) ([]product.Product, error) {
	return c.inner.List(ctx)
}

// ListRecommended passes through to the inner repository.
func (c *FeaturedCache) ListRecommended(ctx context.Context, limit int) ([]product.Product, error) {
	return c.inner.ListRecommended(ctx, limit)
}

// ListByCategory passes through to the inner repository.
func (c *FeaturedCache) ListByCategory(ctx context.Context, category string) ([]product.Product, error) {
	return c.inner.ListByCategory(ctx, category)
}

// GetByIDs passes through to the inner repository.
func (c *FeaturedCache) GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error) {
	return c.inner.GetByIDs(ctx, ids)
}

// ListFeatured serves the featured list from Redis when present, falling back
// to the inner repository on a miss. A cache failure degrades to the inner
// read, never to an error.
func (c *FeaturedCache) ListFeatured(ctx context.Context) ([]product.Product, error) {
	data, err := c.client.Get(ctx, featuredKey).Bytes()
	if err == nil {
		var products []product.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		// Corrupt entry. Drop it and refill below.
		if err := c.client.Del(ctx, featuredKey).Err(); err != nil {
			zctx.From(ctx).Warn("dropping corrupt featured cache entry", zap.Error(err))
		}
	} else if !errors.Is(err, redis.Nil) {
		zctx.From(ctx).Warn("featured cache read failed", zap.Error(err))
	}

	products, err := c.inner.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := c.client.Set(ctx, featuredKey, data, featuredTTL).Err(); err != nil {
			zctx.From(ctx).Warn("featured cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// Invalidate drops the cached featured list. The seed tool calls this after
// rewriting the catalog.
func (c *FeaturedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, featuredKey).Err(); err != nil {
		return fmt.Errorf("invalidating featured cache: %w", err)
	}
	return nil
}
