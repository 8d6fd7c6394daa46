package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acp-checkout/internal/core/cache"
	"acp-checkout/internal/core/logger"
	"acp-checkout/internal/features/checkout/ports"

	"go.uber.org/zap"
)

const productCacheKeyPrefix = "checkout_product:"

// CachedCatalog decorates a ProductCatalog with a read-through cache.
// Cache failures are logged and fall through to the wrapped catalog.
type CachedCatalog struct {
	next  ports.ProductCatalog
	cache cache.Cache
	ttl   time.Duration
}

var (
	_ ports.ProductCatalog     = (*CachedCatalog)(nil)
	_ ports.CatalogInvalidator = (*CachedCatalog)(nil)
)

// NewCachedCatalog creates a new CachedCatalog. A zero ttl disables caching.
func NewCachedCatalog(next ports.ProductCatalog, c cache.Cache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: c,
		ttl:   ttl,
	}
}

// Lookup returns the cached product or fetches and caches it.
func (c *CachedCatalog) Lookup(ctx context.Context, productID string) (*ports.Product, error) {
	if c.ttl <= 0 {
		return c.next.Lookup(ctx, productID)
	}

	key := productCacheKeyPrefix + productID

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var p ports.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		logger.Get().Warn("Discarding corrupt cached product", zap.String("product_id", productID))
	case !errors.Is(err, cache.ErrNotFound):
		logger.Get().Warn("Product cache read failed", zap.String("product_id", productID), zap.Error(err))
	}

	p, err := c.next.Lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			logger.Get().Warn("Product cache write failed", zap.String("product_id", productID), zap.Error(err))
		}
	}

	return p, nil
}

// Invalidate drops a cached product.
func (c *CachedCatalog) Invalidate(ctx context.Context, productID string) error {
	if err := c.cache.Delete(ctx, productCacheKeyPrefix+productID); err != nil {
		return fmt.Errorf("failed to invalidate product %s: %w", productID, err)
	}
	return nil
}
