// Package redis 提供参考数据的读缓存装饰器，按名称缓存，写操作直写并失效缓存。
package redis

import (
	"context"
	"time"

	"github.com/atlasquant/tradedesk/internal/refdata/domain"
	"github.com/atlasquant/tradedesk/pkg/cache"
)

const (
	exchangePrefix   = "refdata:exchange:name:"
	assetClassPrefix = "refdata:asset_class:name:"
	// 改名后的旧键只能等 TTL 过期，所以保持较短
	defaultTTL = 5 * time.Minute
)

// CachedExchangeRepository 带 Redis 读缓存的交易所仓储
type CachedExchangeRepository struct {
	inner domain.ExchangeRepository
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewCachedExchangeRepository 创建带缓存的交易所仓储
func NewCachedExchangeRepository(inner domain.ExchangeRepository, c *cache.RedisCache) *CachedExchangeRepository {
	return &CachedExchangeRepository{inner: inner, cache: c, ttl: defaultTTL}
}

// List 列表查询不走缓存
func (r *CachedExchangeRepository) List(ctx context.Context) ([]*domain.Exchange, error) {
	return r.inner.List(ctx)
}

// GetByName 先查缓存，未命中时回源并写缓存
func (r *CachedExchangeRepository) GetByName(ctx context.Context, name string) (*domain.Exchange, error) {
	var cached domain.Exchange
	if err := r.cache.GetJSON(ctx, exchangePrefix+name, &cached); err == nil && cached.Name != "" {
		return &cached, nil
	}

	exchange, err := r.inner.GetByName(ctx, name)
	if err != nil || exchange == nil {
		return exchange, err
	}

	// 缓存写失败不影响读路径
	_ = r.cache.SetJSON(ctx, exchangePrefix+name, exchange, r.ttl)
	return exchange, nil
}

// Save 直写并失效缓存
func (r *CachedExchangeRepository) Save(ctx context.Context, exchange *domain.Exchange) error {
	if err := r.inner.Save(ctx, exchange); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, exchangePrefix+exchange.Name)
	return nil
}

// Delete 删除并失效缓存
func (r *CachedExchangeRepository) Delete(ctx context.Context, name string) error {
	if err := r.inner.Delete(ctx, name); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, exchangePrefix+name)
	return nil
}

// CachedAssetClassRepository 带 Redis 读缓存的资产类别仓储
type CachedAssetClassRepository struct {
	inner domain.AssetClassRepository
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewCachedAssetClassRepository 创建带缓存的资产类别仓储
func NewCachedAssetClassRepository(inner domain.AssetClassRepository, c *cache.RedisCache) *CachedAssetClassRepository {
	return &CachedAssetClassRepository{inner: inner, cache: c, ttl: defaultTTL}
}

// List 列表查询不走缓存
func (r *CachedAssetClassRepository) List(ctx context.Context) ([]*domain.AssetClass, error) {
	return r.inner.List(ctx)
}

// GetByName 先查缓存，未命中时回源并写缓存
func (r *CachedAssetClassRepository) GetByName(ctx context.Context, name string) (*domain.AssetClass, error) {
	var cached domain.AssetClass
	if err := r.cache.GetJSON(ctx, assetClassPrefix+name, &cached); err == nil && cached.Name != "" {
		return &cached, nil
	}

	assetClass, err := r.inner.GetByName(ctx, name)
	if err != nil || assetClass == nil {
		return assetClass, err
	}

	_ = r.cache.SetJSON(ctx, assetClassPrefix+name, assetClass, r.ttl)
	return assetClass, nil
}

// Save 直写并失效缓存
func (r *CachedAssetClassRepository) Save(ctx context.Context, assetClass *domain.AssetClass) error {
	if err := r.inner.Save(ctx, assetClass); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, assetClassPrefix+assetClass.Name)
	return nil
}

// Delete 删除并失效缓存
func (r *CachedAssetClassRepository) Delete(ctx context.Context, name string) error {
	if err := r.inner.Delete(ctx, name); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, assetClassPrefix+name)
	return nil
}
