package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/inventoryorder/internal/catalog/application"
	"github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	"github.com/wyfcoding/inventoryorder/pkg/cache"
)

// ProductRedisCache 商品读缓存的 Redis 实现
type ProductRedisCache struct {
	cache  *cache.RedisCache
	prefix string
	ttl    time.Duration
}

// NewProductRedisCache 创建商品缓存
func NewProductRedisCache(c *cache.RedisCache, ttl time.Duration) *ProductRedisCache {
	return &ProductRedisCache{
		cache:  c,
		prefix: "product:",
		ttl:    ttl,
	}
}

func (r *ProductRedisCache) GetProduct(ctx context.Context, id uint) (*domain.Product, bool, error) {
	var product domain.Product
	ok, err := r.cache.GetJSON(ctx, r.key(id), &product)
	if err != nil || !ok {
		return nil, false, err
	}
	return &product, true, nil
}

func (r *ProductRedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return nil
	}
	return r.cache.SetJSON(ctx, r.key(product.ID), product, r.ttl)
}

func (r *ProductRedisCache) Invalidate(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	return r.cache.Delete(ctx, keys...)
}

func (r *ProductRedisCache) key(id uint) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

// NoopCache 未启用 Redis 时使用的空实现，读写直达数据库
type NoopCache struct{}

func (NoopCache) GetProduct(context.Context, uint) (*domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetProduct(context.Context, *domain.Product) error { return nil }

func (NoopCache) Invalidate(context.Context, ...uint) error { return nil }

var _ application.ProductCache = (*ProductRedisCache)(nil)
var _ application.ProductCache = NoopCache{}
