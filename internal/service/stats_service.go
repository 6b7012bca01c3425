package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wallet-pulse/internal/analysis"
	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

const (
	// statsPageSize is the transaction window used for stats aggregation
	statsPageSize = 50
	// noHoldingsName is shown when a portfolio has no positions
	noHoldingsName = "No holdings"
)

// StatsService aggregates portfolio data, transaction history and derived
// analytics into the wallet profile view. Each aggregation also upserts the
// persisted profile snapshot so social surfaces can render without hitting
// the provider.
type StatsService struct {
	client   MarketDataClient
	cache    ResponseCache
	profiles ProfileStore
}

// NewStatsService creates a new stats service. profiles may be nil, which
// skips snapshot persistence.
func NewStatsService(client MarketDataClient, cache ResponseCache, profiles ProfileStore) *StatsService {
	return &StatsService{
		client:   client,
		cache:    cache,
		profiles: profiles,
	}
}

// GetWalletStats computes the aggregate stats view for a wallet address
func (s *StatsService) GetWalletStats(ctx context.Context, address string) (*types.WalletStats, error) {
	if !marketdata.ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	logger := logging.FromContext(ctx)

	key := ""
	if s.cache != nil {
		key = s.cache.GenerateStatsKey(address)
		var cached types.WalletStats
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.WithError(err).Warn("Stats cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	var (
		portfolio *types.Portfolio
		page      *marketdata.TransactionPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		portfolio, err = s.client.GetPortfolio(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		page, err = s.fetchTransactions(gctx, address)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	transactions := page.Data
	style := analysis.Classify(transactions)
	performance := analysis.Analyze(*portfolio, transactions)

	stats := &types.WalletStats{
		TotalValue:     portfolio.TotalValue,
		ValueChange24h: portfolio.TotalValueChange24h,
		TotalTrades:    len(transactions),
		ActiveDays:     analysis.ActiveDays(transactions),
		TopHolding:     topHolding(portfolio),
		TradingStyle:   style,
		Performance:    performance,
	}

	s.persistProfile(ctx, address, stats)

	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, stats); err != nil {
			logger.WithError(err).Warn("Stats cache write failed")
		}
	}

	return stats, nil
}

// fetchTransactions pulls the stats transaction window. On an upstream rate
// limit it retries once with half the page size before giving up.
func (s *StatsService) fetchTransactions(ctx context.Context, address string) (*marketdata.TransactionPage, error) {
	page, err := s.client.GetTransactions(ctx, address, marketdata.TransactionParams{PageSize: statsPageSize})
	if err == nil {
		return page, nil
	}
	if !apperrors.IsRateLimited(err) {
		return nil, err
	}

	logging.FromContext(ctx).WithField("pageSize", statsPageSize/2).
		Warn("Provider rate limited, retrying stats fetch with smaller page")
	return s.client.GetTransactions(ctx, address, marketdata.TransactionParams{PageSize: statsPageSize / 2})
}

// persistProfile writes the profile snapshot. Persistence is best-effort:
// a database outage must not take down the stats endpoint.
func (s *StatsService) persistProfile(ctx context.Context, address string, stats *types.WalletStats) {
	if s.profiles == nil {
		return
	}

	profile := &types.WalletProfile{
		WalletAddress:  address,
		TotalValue:     stats.TotalValue,
		ValueChange24h: stats.ValueChange24h,
		TotalTrades:    stats.TotalTrades,
		ActiveDays:     stats.ActiveDays,
		WinRate:        stats.Performance.WinRate,
		AvgHoldTime:    stats.Performance.AverageHoldTime,
		RiskScore:      stats.Performance.RiskScore,
		TradingStyle:   string(stats.TradingStyle.Type),
		Confidence:     stats.TradingStyle.Confidence,
		Traits:         stats.TradingStyle.Traits,
		LastUpdated:    time.Now(),
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("address", address).
			Warn("Failed to persist wallet profile snapshot")
	}
}

// topHolding picks the largest position by USD value
func topHolding(portfolio *types.Portfolio) types.TopHolding {
	if len(portfolio.Positions) == 0 {
		return types.TopHolding{
			Name:   noHoldingsName,
			Symbol: "N/A",
		}
	}

	best := portfolio.Positions[0]
	for _, pos := range portfolio.Positions[1:] {
		if pos.Value > best.Value {
			best = pos
		}
	}

	return types.TopHolding{
		ID:             best.Asset.ID,
		Name:           best.Asset.Name,
		Symbol:         best.Asset.Symbol,
		Price:          best.Asset.Price,
		PriceChange24h: best.Asset.PriceChange24h,
	}
}
