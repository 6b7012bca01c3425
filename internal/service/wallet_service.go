package service

import (
	"context"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

// WalletService serves live wallet data through the response cache.
// Cache failures are logged and degrade to a provider fetch; a cache outage
// never fails a request.
type WalletService struct {
	client MarketDataClient
	cache  ResponseCache
}

// NewWalletService creates a new wallet service. cache may be nil, which
// disables caching entirely.
func NewWalletService(client MarketDataClient, cache ResponseCache) *WalletService {
	return &WalletService{
		client: client,
		cache:  cache,
	}
}

// GetPortfolio returns a wallet's portfolio snapshot with the chart series
// for the requested period merged in
func (s *WalletService) GetPortfolio(ctx context.Context, address string, period types.ChartPeriod) (*types.Portfolio, error) {
	if !marketdata.ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	var cached types.Portfolio
	key := ""
	if s.cache != nil {
		key = s.cache.GeneratePortfolioKey(address, string(period))
		if hit := s.cacheGet(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	portfolio, err := s.client.GetPortfolioWithChart(ctx, address, period)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, portfolio)
	return portfolio, nil
}

// GetTransactions returns one page of a wallet's transaction history
func (s *WalletService) GetTransactions(ctx context.Context, address string, pageSize int, cursor string) (*marketdata.TransactionPage, error) {
	if !marketdata.ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	var cached marketdata.TransactionPage
	key := ""
	if s.cache != nil {
		key = s.cache.GenerateTransactionsKey(address, pageSize, cursor)
		if hit := s.cacheGet(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	page, err := s.client.GetTransactions(ctx, address, marketdata.TransactionParams{
		PageSize: pageSize,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, page)
	return page, nil
}

// GetChart returns a wallet's portfolio value series for a period
func (s *WalletService) GetChart(ctx context.Context, address string, period types.ChartPeriod) (*marketdata.ChartResult, error) {
	if !marketdata.ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	var cached marketdata.ChartResult
	key := ""
	if s.cache != nil {
		key = s.cache.GenerateChartKey(address, string(period))
		if hit := s.cacheGet(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	chart, err := s.client.GetChart(ctx, address, period)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, chart)
	return chart, nil
}

func (s *WalletService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache read failed, fetching from provider")
		return false
	}
	return hit
}

func (s *WalletService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
