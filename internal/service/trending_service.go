package service

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/types"
)

const (
	// defaultTrendingLimit bounds the trending list when no limit is given
	defaultTrendingLimit = 10
	// maxTrendingLimit is the hard cap on list size
	maxTrendingLimit = 50
	// trendingFetchConcurrency bounds concurrent provider fetches
	trendingFetchConcurrency = 5
)

// seedTrendingWallets backs the trending surface before any curation has
// run, so a fresh deployment never serves an empty list
var seedTrendingWallets = []string{
	"0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
	"0xab5801a7d398351b8be11c439e05c5b3259aec9b",
	"0x220866b1a2219f40e72f5c628b65d54268ca3a9d",
	"0x1db3439a222c519ab44bb1144fc28167b4fa6ee6",
	"0x3ddfa8ec3052539b6c9549f12cea2c295cff5296",
}

// TrendingEntry is one hydrated row of the trending list
type TrendingEntry struct {
	WalletAddress  string  `json:"walletAddress"`
	Rank           int     `json:"rank"`
	Score          float64 `json:"score"`
	TotalValue     float64 `json:"totalValue"`
	ValueChange24h float64 `json:"valueChange24h"`
	TradingStyle   string  `json:"tradingStyle"`
}

// TrendingService serves ranked trending wallets, hydrating each entry with
// live portfolio data. A wallet whose live fetch fails falls back to its
// stored profile snapshot; the list itself never fails on one bad entry.
type TrendingService struct {
	trending TrendingStore
	profiles ProfileStore
	client   MarketDataClient
	cache    ResponseCache
}

// NewTrendingService creates a new trending service
func NewTrendingService(trending TrendingStore, profiles ProfileStore, client MarketDataClient, cache ResponseCache) *TrendingService {
	return &TrendingService{
		trending: trending,
		profiles: profiles,
		client:   client,
		cache:    cache,
	}
}

// GetTrending returns the hydrated trending list for a period
func (s *TrendingService) GetTrending(ctx context.Context, period types.ChartPeriod, limit int) ([]*TrendingEntry, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	logger := logging.FromContext(ctx)

	key := ""
	if s.cache != nil {
		key = s.cache.GenerateTrendingKey(string(period), limit)
		var cached []*TrendingEntry
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.WithError(err).Warn("Trending cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	wallets, err := s.trending.ListByPeriod(ctx, string(period), limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("trending list", err)
	}
	if len(wallets) == 0 {
		wallets = s.seedStore(ctx, period, limit)
	}

	entries := make([]*TrendingEntry, len(wallets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trendingFetchConcurrency)

	for i, wallet := range wallets {
		i, wallet := i, wallet
		g.Go(func() error {
			entries[i] = s.hydrate(gctx, wallet)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})

	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, entries); err != nil {
			logger.WithError(err).Warn("Trending cache write failed")
		}
	}

	return entries, nil
}

// hydrate fills one trending row from live data, falling back to the stored
// profile snapshot, falling back to the bare ranked entry
func (s *TrendingService) hydrate(ctx context.Context, wallet *types.TrendingWallet) *TrendingEntry {
	entry := &TrendingEntry{
		WalletAddress: wallet.WalletAddress,
		Rank:          wallet.Rank,
		Score:         wallet.Score,
	}

	if profile, err := s.profiles.GetByAddress(ctx, wallet.WalletAddress); err == nil {
		entry.TotalValue = profile.TotalValue
		entry.ValueChange24h = profile.ValueChange24h
		entry.TradingStyle = profile.TradingStyle
	}

	portfolio, err := s.client.GetPortfolio(ctx, wallet.WalletAddress)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("address", wallet.WalletAddress).
			Warn("Trending hydration fell back to stored profile")
		return entry
	}

	entry.TotalValue = portfolio.TotalValue
	entry.ValueChange24h = portfolio.TotalValueChange24h
	return entry
}

// seedStore bootstraps an empty period with the static seed list, writing
// the full list through so later curation replaces real rows instead of
// starting from a blank table. A failed write still serves the seed list.
func (s *TrendingService) seedStore(ctx context.Context, period types.ChartPeriod, limit int) []*types.TrendingWallet {
	wallets := seedList()
	if err := s.trending.Replace(ctx, string(period), wallets); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Trending seed write failed")
	}

	if len(wallets) > limit {
		wallets = wallets[:limit]
	}
	return wallets
}

// seedList turns the static seed addresses into ranked entries
func seedList() []*types.TrendingWallet {
	wallets := make([]*types.TrendingWallet, 0, len(seedTrendingWallets))
	for i, address := range seedTrendingWallets {
		wallets = append(wallets, &types.TrendingWallet{
			WalletAddress: address,
			Rank:          i + 1,
			Score:         float64(100 - i*10),
		})
	}
	return wallets
}
