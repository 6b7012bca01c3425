package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService provides the read-through response cache in front of the
// market data provider. Entries are short-lived; staleness up to the TTL is
// acceptable, serving errors is not.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyPortfolio is for portfolio snapshots
	CacheKeyPortfolio CacheKeyType = "portfolio"
	// CacheKeyTransactions is for transaction pages
	CacheKeyTransactions CacheKeyType = "txs"
	// CacheKeyChart is for chart series
	CacheKeyChart CacheKeyType = "chart"
	// CacheKeyStats is for aggregated wallet stats
	CacheKeyStats CacheKeyType = "stats"
	// CacheKeyTrending is for trending lists
	CacheKeyTrending CacheKeyType = "trending"
)

// GenerateCacheKey generates a cache key for a given type and parameters.
// Format: <type>:<param1>:<param2>:...
// Parameters are lowercased so mixed-case addresses share one entry.
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	normalizedParams := make([]string, len(params))
	for i, param := range params {
		normalizedParams[i] = strings.ToLower(param)
	}

	parts := append([]string{string(keyType)}, normalizedParams...)
	return strings.Join(parts, ":")
}

// GeneratePortfolioKey generates a cache key for a portfolio snapshot
// Format: portfolio:<address>:<period>
func (c *CacheService) GeneratePortfolioKey(address, period string) string {
	return c.GenerateCacheKey(CacheKeyPortfolio, address, period)
}

// GenerateTransactionsKey generates a cache key for a transaction page
// Format: txs:<address>:<pageSize>:<cursor>
func (c *CacheService) GenerateTransactionsKey(address string, pageSize int, cursor string) string {
	return c.GenerateCacheKey(CacheKeyTransactions, address, fmt.Sprintf("%d", pageSize), cursor)
}

// GenerateChartKey generates a cache key for a chart series
// Format: chart:<address>:<period>
func (c *CacheService) GenerateChartKey(address, period string) string {
	return c.GenerateCacheKey(CacheKeyChart, address, period)
}

// GenerateStatsKey generates a cache key for aggregated wallet stats
// Format: stats:<address>
func (c *CacheService) GenerateStatsKey(address string) string {
	return c.GenerateCacheKey(CacheKeyStats, address)
}

// GenerateTrendingKey generates a cache key for a trending list
// Format: trending:<period>:<limit>
func (c *CacheService) GenerateTrendingKey(period string, limit int) string {
	return c.GenerateCacheKey(CacheKeyTrending, period, fmt.Sprintf("%d", limit))
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redis.Set(ctx, key, data, ttl)
}

// Get retrieves a value from cache and deserializes it. A miss returns
// (false, nil); only transport failures are errors.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidateWallet removes every cached entry for a wallet address
func (c *CacheService) InvalidateWallet(ctx context.Context, address string) error {
	address = strings.ToLower(address)
	patterns := []string{
		fmt.Sprintf("%s:%s:*", CacheKeyPortfolio, address),
		fmt.Sprintf("%s:%s:*", CacheKeyTransactions, address),
		fmt.Sprintf("%s:%s:*", CacheKeyChart, address),
		fmt.Sprintf("%s:%s", CacheKeyStats, address),
	}

	var keys []string
	for _, pattern := range patterns {
		matched, err := c.redis.Keys(ctx, pattern)
		if err != nil {
			return fmt.Errorf("failed to list cache keys: %w", err)
		}
		keys = append(keys, matched...)
	}

	return c.Invalidate(ctx, keys...)
}
