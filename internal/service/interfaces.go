// Package service implements the application services: wallet data access
// with caching, stats aggregation, the social graph, activity feeds,
// trading signals and trending lists.
package service

import (
	"context"

	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

// Dependency interfaces for injection; satisfied by marketdata and storage.

// MarketDataClient fetches live wallet data from the upstream provider
type MarketDataClient interface {
	GetPortfolio(ctx context.Context, address string) (*types.Portfolio, error)
	GetTransactions(ctx context.Context, address string, params marketdata.TransactionParams) (*marketdata.TransactionPage, error)
	GetChart(ctx context.Context, address string, period types.ChartPeriod) (*marketdata.ChartResult, error)
	GetPortfolioWithChart(ctx context.Context, address string, period types.ChartPeriod) (*types.Portfolio, error)
}

// ResponseCache is the short-TTL read-through cache in front of the provider
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	GeneratePortfolioKey(address, period string) string
	GenerateTransactionsKey(address string, pageSize int, cursor string) string
	GenerateChartKey(address, period string) string
	GenerateStatsKey(address string) string
	GenerateTrendingKey(period string, limit int) string
}

// UserStore persists wallet identities
type UserStore interface {
	GetOrCreate(ctx context.Context, walletAddress string) (*types.User, error)
	GetByAddress(ctx context.Context, walletAddress string) (*types.User, error)
}

// FollowStore persists follow edges
type FollowStore interface {
	Follow(ctx context.Context, followerAddress, followingAddress string) (bool, error)
	Unfollow(ctx context.Context, followerAddress, followingAddress string) (bool, error)
	IsFollowing(ctx context.Context, followerAddress, followingAddress string) (bool, error)
	ListFollowing(ctx context.Context, followerAddress string) ([]string, error)
	ListFollowers(ctx context.Context, followingAddress string) ([]string, error)
	Counts(ctx context.Context, walletAddress string) (followers int64, following int64, err error)
}

// ActivityStore persists the append-only activity log
type ActivityStore interface {
	Create(ctx context.Context, activity *types.Activity) error
	ListByWallet(ctx context.Context, walletAddress string, limit int) ([]*types.Activity, error)
	Feed(ctx context.Context, followerAddress string, limit int) ([]*types.Activity, error)
}

// ProfileStore persists derived wallet profile snapshots
type ProfileStore interface {
	Upsert(ctx context.Context, profile *types.WalletProfile) error
	GetByAddress(ctx context.Context, walletAddress string) (*types.WalletProfile, error)
}

// TrendingStore persists curated trending lists
type TrendingStore interface {
	ListByPeriod(ctx context.Context, period string, limit int) ([]*types.TrendingWallet, error)
	Replace(ctx context.Context, period string, wallets []*types.TrendingWallet) error
}
