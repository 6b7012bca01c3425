package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

const (
	// signalWindow is how far back transactions count as signals
	signalWindow = 24 * time.Hour
	// signalMinValueUSD filters out dust
	signalMinValueUSD = 100.0
	// signalMaxResults caps the returned signal list
	signalMaxResults = 20
	// signalPageSize is the per-wallet transaction window
	signalPageSize = 30
	// signalFetchConcurrency bounds concurrent provider fetches
	signalFetchConcurrency = 5
)

// SignalService derives buy/sell/swap signals from the recent transactions
// of a set of watched wallets. One unreachable wallet degrades to a partial
// result instead of failing the whole request.
type SignalService struct {
	client MarketDataClient
	users  UserStore
}

// NewSignalService creates a new signal service. users may be nil, which
// skips wallet name resolution.
func NewSignalService(client MarketDataClient, users UserStore) *SignalService {
	return &SignalService{
		client: client,
		users:  users,
	}
}

// GetSignals returns trading signals for the given wallets over the last
// 24 hours, newest first, capped at 20
func (s *SignalService) GetSignals(ctx context.Context, walletAddresses []string) ([]*types.TradingSignal, error) {
	if len(walletAddresses) == 0 {
		return []*types.TradingSignal{}, nil
	}
	for _, address := range walletAddresses {
		if !marketdata.ValidateAddress(address) {
			return nil, apperrors.NewInvalidAddressError(address)
		}
	}

	cutoff := time.Now().Add(-signalWindow)
	logger := logging.FromContext(ctx)

	var mu sync.Mutex
	var signals []*types.TradingSignal

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signalFetchConcurrency)

	for _, address := range walletAddresses {
		address := address
		g.Go(func() error {
			page, err := s.client.GetTransactions(gctx, address, marketdata.TransactionParams{
				PageSize: signalPageSize,
			})
			if err != nil {
				logger.WithError(err).WithField("address", address).
					Warn("Skipping wallet in signal scan")
				return nil
			}

			walletName := s.resolveName(gctx, address)
			walletSignals := signalsFromTransactions(address, walletName, page.Data, cutoff)

			mu.Lock()
			signals = append(signals, walletSignals...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Timestamp.After(signals[j].Timestamp)
	})
	if len(signals) > signalMaxResults {
		signals = signals[:signalMaxResults]
	}
	return signals, nil
}

// signalsFromTransactions filters one wallet's history down to signals:
// recent, above the dust threshold, and attributable to a direction
func signalsFromTransactions(address string, walletName *string, transactions []types.Transaction, cutoff time.Time) []*types.TradingSignal {
	lowered := strings.ToLower(address)

	var signals []*types.TradingSignal
	for _, tx := range transactions {
		if tx.Timestamp == nil || !tx.Timestamp.After(cutoff) {
			continue
		}
		if tx.ValueUSD <= signalMinValueUSD {
			continue
		}

		action, ok := signalAction(lowered, tx)
		if !ok {
			continue
		}

		signals = append(signals, &types.TradingSignal{
			ID:            fmt.Sprintf("%s-%s", lowered, tx.ID),
			WalletAddress: lowered,
			WalletName:    walletName,
			Action:        action,
			Token:         tx.Asset.Symbol,
			Amount:        fmt.Sprintf("%g", tx.Value),
			ValueUSD:      tx.ValueUSD,
			Timestamp:     *tx.Timestamp,
			TxHash:        tx.Hash,
		})
	}
	return signals
}

// signalAction maps a transaction to a signal direction. Swaps signal swap;
// transfers signal buy when funds flow in and sell when they flow out.
// Approvals and other types carry no signal.
func signalAction(walletAddress string, tx types.Transaction) (types.SignalAction, bool) {
	switch tx.Type {
	case types.TxTypeSwap:
		return types.SignalSwap, true
	case types.TxTypeTransfer:
		if strings.ToLower(tx.ToAddress) == walletAddress {
			return types.SignalBuy, true
		}
		if strings.ToLower(tx.FromAddress) == walletAddress {
			return types.SignalSell, true
		}
		return "", false
	default:
		return "", false
	}
}

// resolveName looks up an ENS name for display, best-effort
func (s *SignalService) resolveName(ctx context.Context, address string) *string {
	if s.users == nil {
		return nil
	}
	user, err := s.users.GetByAddress(ctx, address)
	if err != nil {
		return nil
	}
	return user.ENSName
}
