package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

const (
	// defaultFeedLimit bounds the activity feed when the caller gives no limit
	defaultFeedLimit = 50
	// maxFeedLimit is the hard cap on feed size
	maxFeedLimit = 200
	// synthFeedPageSize is the transaction window used to synthesize a feed
	synthFeedPageSize = 20
)

// ActivityService builds activity feeds. A wallet that follows others gets
// the merged stored activity of the followed set. A wallet that follows no
// one gets its own recorded activity (webhook-detected entries), falling
// back to a feed synthesized from its recent transactions so the surface is
// never empty for a new user.
type ActivityService struct {
	follows    FollowStore
	activities ActivityStore
	client     MarketDataClient
}

// NewActivityService creates a new activity service
func NewActivityService(follows FollowStore, activities ActivityStore, client MarketDataClient) *ActivityService {
	return &ActivityService{
		follows:    follows,
		activities: activities,
		client:     client,
	}
}

// GetFeed returns the activity feed for a wallet, newest first
func (s *ActivityService) GetFeed(ctx context.Context, walletAddress string, limit int) ([]*types.Activity, error) {
	if !marketdata.ValidateAddress(walletAddress) {
		return nil, apperrors.NewInvalidAddressError(walletAddress)
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	following, err := s.follows.ListFollowing(ctx, walletAddress)
	if err != nil {
		return nil, apperrors.NewDatabaseError("activity feed", err)
	}

	if len(following) == 0 {
		stored, err := s.activities.ListByWallet(ctx, walletAddress, limit)
		if err != nil {
			logging.FromContext(ctx).WithError(err).Warn("Failed to load stored activity")
		} else if len(stored) > 0 {
			return stored, nil
		}
		return s.synthesizeFeed(ctx, walletAddress, limit)
	}

	feed, err := s.activities.Feed(ctx, walletAddress, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("activity feed", err)
	}
	if feed == nil {
		feed = []*types.Activity{}
	}
	return feed, nil
}

// RecordDetected appends an activity_detected entry, used by the provider
// webhook when it observes new on-chain activity for a tracked wallet
func (s *ActivityService) RecordDetected(ctx context.Context, walletAddress string, payload json.RawMessage) error {
	if !marketdata.ValidateAddress(walletAddress) {
		return apperrors.NewInvalidAddressError(walletAddress)
	}

	activity := &types.Activity{
		WalletAddress: walletAddress,
		Type:          types.ActivityDetected,
		Data:          payload,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return apperrors.NewDatabaseError("record activity", err)
	}
	return nil
}

// synthesizeFeed builds transaction_created entries from the wallet's own
// recent history. Synthesized entries are ephemeral and never persisted.
func (s *ActivityService) synthesizeFeed(ctx context.Context, walletAddress string, limit int) ([]*types.Activity, error) {
	page, err := s.client.GetTransactions(ctx, walletAddress, marketdata.TransactionParams{
		PageSize: synthFeedPageSize,
	})
	if err != nil {
		// A provider outage degrades to an empty feed rather than a 5xx
		logging.FromContext(ctx).WithError(err).Warn("Failed to synthesize activity feed")
		return []*types.Activity{}, nil
	}

	transactions := page.Data
	feed := make([]*types.Activity, 0, len(transactions))

	// Provider order is oldest first; the feed wants newest first
	for i := len(transactions) - 1; i >= 0 && len(feed) < limit; i-- {
		tx := transactions[i]

		payload, err := json.Marshal(map[string]interface{}{
			"hash":     tx.Hash,
			"type":     tx.Type,
			"valueUsd": tx.ValueUSD,
			"symbol":   tx.Asset.Symbol,
		})
		if err != nil {
			continue
		}

		createdAt := time.Now()
		if tx.Timestamp != nil {
			createdAt = *tx.Timestamp
		}

		feed = append(feed, &types.Activity{
			ID:            uuid.New().String(),
			WalletAddress: strings.ToLower(walletAddress),
			Type:          types.ActivityTransactionCreated,
			Data:          payload,
			CreatedAt:     createdAt,
		})
	}

	return feed, nil
}
