package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wallet-pulse/internal/types"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheService(NewRedisCacheFromClient(client), ttl), mr
}

func TestCacheSetGetRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t, 20*time.Second)
	ctx := context.Background()

	original := &types.Portfolio{
		ID:                  "p1",
		TotalValue:          12345.67,
		TotalValueChange24h: -42.5,
		Positions: []types.Position{
			{Asset: types.Asset{Symbol: "ETH"}, Value: 10000, Percentage: 81},
		},
	}

	key := cache.GeneratePortfolioKey("0xAbC", "30d")
	if err := cache.Set(ctx, key, original); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var restored types.Portfolio
	hit, err := cache.Get(ctx, key, &restored)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("Get reported a miss after Set")
	}
	if restored.TotalValue != original.TotalValue || len(restored.Positions) != 1 {
		t.Errorf("restored = %+v, want %+v", restored, original)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	cache, _ := newTestCache(t, 20*time.Second)

	var dest types.Portfolio
	hit, err := cache.Get(context.Background(), "portfolio:0xabc:30d", &dest)
	if err != nil {
		t.Fatalf("Get on a missing key: %v", err)
	}
	if hit {
		t.Error("Get reported a hit for a missing key")
	}
}

func TestCacheKeysAreLowercased(t *testing.T) {
	cache, _ := newTestCache(t, 20*time.Second)

	mixed := cache.GeneratePortfolioKey("0xABCdef", "30d")
	lower := cache.GeneratePortfolioKey("0xabcdef", "30d")
	if mixed != lower {
		t.Errorf("keys differ by case: %s vs %s", mixed, lower)
	}
	if mixed != "portfolio:0xabcdef:30d" {
		t.Errorf("key = %s, want portfolio:0xabcdef:30d", mixed)
	}
}

func TestCacheKeyFormats(t *testing.T) {
	cache, _ := newTestCache(t, 20*time.Second)

	tests := []struct {
		got  string
		want string
	}{
		{cache.GenerateTransactionsKey("0xAbc", 50, "Cursor1"), "txs:0xabc:50:cursor1"},
		{cache.GenerateChartKey("0xAbc", "7d"), "chart:0xabc:7d"},
		{cache.GenerateStatsKey("0xAbc"), "stats:0xabc"},
		{cache.GenerateTrendingKey("7d", 10), "trending:7d:10"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %s, want %s", tt.got, tt.want)
		}
	}
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, 20*time.Second)
	ctx := context.Background()

	key := cache.GenerateStatsKey("0xabc")
	if err := cache.Set(ctx, key, &types.WalletStats{TotalValue: 100}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	mr.FastForward(21 * time.Second)

	var dest types.WalletStats
	hit, err := cache.Get(ctx, key, &dest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("entry survived past its TTL")
	}
}

func TestInvalidateWallet(t *testing.T) {
	cache, _ := newTestCache(t, 20*time.Second)
	ctx := context.Background()

	keep := cache.GeneratePortfolioKey("0xother", "30d")
	keys := []string{
		cache.GeneratePortfolioKey("0xabc", "30d"),
		cache.GeneratePortfolioKey("0xabc", "7d"),
		cache.GenerateTransactionsKey("0xabc", 50, ""),
		cache.GenerateChartKey("0xabc", "30d"),
		cache.GenerateStatsKey("0xabc"),
	}
	for _, key := range append(keys, keep) {
		if err := cache.Set(ctx, key, map[string]int{"v": 1}); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := cache.InvalidateWallet(ctx, "0xABC"); err != nil {
		t.Fatalf("InvalidateWallet: %v", err)
	}

	var dest map[string]int
	for _, key := range keys {
		if hit, _ := cache.Get(ctx, key, &dest); hit {
			t.Errorf("key %s survived invalidation", key)
		}
	}
	if hit, _ := cache.Get(ctx, keep, &dest); !hit {
		t.Errorf("key %s for another wallet was invalidated", keep)
	}
}
