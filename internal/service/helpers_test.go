package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	addrC = "0xcccccccccccccccccccccccccccccccccccccccc"
)

// mockClient is a scriptable MarketDataClient
type mockClient struct {
	portfolioFn    func(ctx context.Context, address string) (*types.Portfolio, error)
	transactionsFn func(ctx context.Context, address string, params marketdata.TransactionParams) (*marketdata.TransactionPage, error)
	chartFn        func(ctx context.Context, address string, period types.ChartPeriod) (*marketdata.ChartResult, error)
}

func (m *mockClient) GetPortfolio(ctx context.Context, address string) (*types.Portfolio, error) {
	if m.portfolioFn == nil {
		return &types.Portfolio{}, nil
	}
	return m.portfolioFn(ctx, address)
}

func (m *mockClient) GetTransactions(ctx context.Context, address string, params marketdata.TransactionParams) (*marketdata.TransactionPage, error) {
	if m.transactionsFn == nil {
		return &marketdata.TransactionPage{}, nil
	}
	return m.transactionsFn(ctx, address, params)
}

func (m *mockClient) GetChart(ctx context.Context, address string, period types.ChartPeriod) (*marketdata.ChartResult, error) {
	if m.chartFn == nil {
		return &marketdata.ChartResult{}, nil
	}
	return m.chartFn(ctx, address, period)
}

func (m *mockClient) GetPortfolioWithChart(ctx context.Context, address string, period types.ChartPeriod) (*types.Portfolio, error) {
	portfolio, err := m.GetPortfolio(ctx, address)
	if err != nil {
		return nil, err
	}
	chart, err := m.GetChart(ctx, address, period)
	if err != nil {
		return nil, err
	}
	portfolio.ChartData = chart.Points
	return portfolio, nil
}

// mockUserStore tracks upserted users in memory
type mockUserStore struct {
	users map[string]*types.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*types.User)}
}

func (m *mockUserStore) GetOrCreate(_ context.Context, walletAddress string) (*types.User, error) {
	walletAddress = strings.ToLower(walletAddress)
	if user, ok := m.users[walletAddress]; ok {
		return user, nil
	}
	user := &types.User{ID: walletAddress, WalletAddress: walletAddress, CreatedAt: time.Now()}
	m.users[walletAddress] = user
	return user, nil
}

func (m *mockUserStore) GetByAddress(_ context.Context, walletAddress string) (*types.User, error) {
	if user, ok := m.users[strings.ToLower(walletAddress)]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

// mockFollowStore implements the follow graph with the same idempotence
// guarantees the SQL layer enforces via its unique constraint
type mockFollowStore struct {
	edges map[string][]string // follower -> following, insertion order
}

func newMockFollowStore() *mockFollowStore {
	return &mockFollowStore{edges: make(map[string][]string)}
}

func (m *mockFollowStore) Follow(_ context.Context, follower, following string) (bool, error) {
	follower, following = strings.ToLower(follower), strings.ToLower(following)
	if follower == following {
		return false, &types.ServiceError{Code: "SELF_FOLLOW", Message: "a wallet cannot follow itself"}
	}
	for _, existing := range m.edges[follower] {
		if existing == following {
			return false, nil
		}
	}
	m.edges[follower] = append(m.edges[follower], following)
	return true, nil
}

func (m *mockFollowStore) Unfollow(_ context.Context, follower, following string) (bool, error) {
	follower, following = strings.ToLower(follower), strings.ToLower(following)
	for i, existing := range m.edges[follower] {
		if existing == following {
			m.edges[follower] = append(m.edges[follower][:i], m.edges[follower][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFollowStore) IsFollowing(_ context.Context, follower, following string) (bool, error) {
	for _, existing := range m.edges[strings.ToLower(follower)] {
		if existing == strings.ToLower(following) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFollowStore) ListFollowing(_ context.Context, follower string) ([]string, error) {
	return m.edges[strings.ToLower(follower)], nil
}

func (m *mockFollowStore) ListFollowers(_ context.Context, following string) ([]string, error) {
	following = strings.ToLower(following)
	var followers []string
	for follower, targets := range m.edges {
		for _, target := range targets {
			if target == following {
				followers = append(followers, follower)
			}
		}
	}
	return followers, nil
}

func (m *mockFollowStore) Counts(ctx context.Context, walletAddress string) (int64, int64, error) {
	followers, _ := m.ListFollowers(ctx, walletAddress)
	following, _ := m.ListFollowing(ctx, walletAddress)
	return int64(len(followers)), int64(len(following)), nil
}

// mockActivityStore records activity entries in memory
type mockActivityStore struct {
	entries []*types.Activity
	err     error
}

func (m *mockActivityStore) Create(_ context.Context, activity *types.Activity) error {
	if m.err != nil {
		return m.err
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, activity)
	return nil
}

func (m *mockActivityStore) ListByWallet(_ context.Context, walletAddress string, limit int) ([]*types.Activity, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*types.Activity
	for _, entry := range m.entries {
		if entry.WalletAddress == strings.ToLower(walletAddress) && len(out) < limit {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *mockActivityStore) Feed(_ context.Context, _ string, limit int) ([]*types.Activity, error) {
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

// mockProfileStore captures the last upserted profile
type mockProfileStore struct {
	last *types.WalletProfile
	err  error
}

func (m *mockProfileStore) Upsert(_ context.Context, profile *types.WalletProfile) error {
	if m.err != nil {
		return m.err
	}
	m.last = profile
	return nil
}

func (m *mockProfileStore) GetByAddress(_ context.Context, walletAddress string) (*types.WalletProfile, error) {
	if m.last != nil && m.last.WalletAddress == strings.ToLower(walletAddress) {
		return m.last, nil
	}
	return nil, errors.New("wallet profile not found")
}

// mockTrendingStore serves a fixed trending list
type mockTrendingStore struct {
	wallets []*types.TrendingWallet
}

func (m *mockTrendingStore) ListByPeriod(_ context.Context, period string, limit int) ([]*types.TrendingWallet, error) {
	if len(m.wallets) > limit {
		return m.wallets[:limit], nil
	}
	return m.wallets, nil
}

func (m *mockTrendingStore) Replace(_ context.Context, period string, wallets []*types.TrendingWallet) error {
	m.wallets = wallets
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
