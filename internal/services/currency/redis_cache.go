package currency

import (
	"context"
	"fmt"

	"fintrack/internal/repositories/cache"
)

const rateCacheEntity = "rates"

// RedisRateCache shares rate tables between processes through Redis.
// Keys never expire on the server; the service treats old tables as stale.
type RedisRateCache struct {
	cache *cache.CacheService
}

func NewRedisRateCache(c *cache.CacheService) *RedisRateCache {
	return &RedisRateCache{cache: c}
}

func (c *RedisRateCache) key(base string) string {
	return c.cache.GenerateKey(rateCacheEntity, "base", normalize(base))
}

func (c *RedisRateCache) Get(ctx context.Context, base string) (*RateTable, bool, error) {
	var table RateTable
	found, err := c.cache.Get(ctx, c.key(base), &table)
	if err != nil || !found {
		return nil, false, err
	}
	return &table, true, nil
}

func (c *RedisRateCache) Set(ctx context.Context, table *RateTable) error {
	if err := c.cache.SetWithTTL(ctx, c.key(table.Base), table, 0); err != nil {
		return fmt.Errorf("failed to cache rates for %s: %w", table.Base, err)
	}
	return nil
}

func (c *RedisRateCache) Clear(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, c.cache.GenerateKey(rateCacheEntity, "base", "*"))
}
