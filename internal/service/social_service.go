package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/types"
)

// SocialService manages the follow graph. Both follow and unfollow are
// idempotent: replaying either request converges on the same graph state,
// and the activity log only records transitions that actually happened.
type SocialService struct {
	users      UserStore
	follows    FollowStore
	activities ActivityStore
}

// NewSocialService creates a new social service
func NewSocialService(users UserStore, follows FollowStore, activities ActivityStore) *SocialService {
	return &SocialService{
		users:      users,
		follows:    follows,
		activities: activities,
	}
}

// FollowStatus describes the relationship between two wallets
type FollowStatus struct {
	Following      bool  `json:"following"`
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
}

// Follow creates a follow edge from follower to following. Both addresses
// become users on first sight. Re-following is a no-op.
func (s *SocialService) Follow(ctx context.Context, followerAddress, followingAddress string) error {
	if err := validateAddresses(followerAddress, followingAddress); err != nil {
		return err
	}

	if _, err := s.users.GetOrCreate(ctx, followerAddress); err != nil {
		return apperrors.NewDatabaseError("follow", err)
	}
	if _, err := s.users.GetOrCreate(ctx, followingAddress); err != nil {
		return apperrors.NewDatabaseError("follow", err)
	}

	created, err := s.follows.Follow(ctx, followerAddress, followingAddress)
	if err != nil {
		var svcErr *types.ServiceError
		if ok := asServiceError(err, &svcErr); ok {
			return apperrors.NewValidationError(svcErr.Message, svcErr.Details)
		}
		return apperrors.NewDatabaseError("follow", err)
	}

	if created {
		s.recordActivity(ctx, followerAddress, types.ActivityFollow, map[string]string{
			"following": strings.ToLower(followingAddress),
		})
	}

	return nil
}

// Unfollow removes a follow edge. Unfollowing a wallet that was never
// followed is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerAddress, followingAddress string) error {
	if err := validateAddresses(followerAddress, followingAddress); err != nil {
		return err
	}

	removed, err := s.follows.Unfollow(ctx, followerAddress, followingAddress)
	if err != nil {
		return apperrors.NewDatabaseError("unfollow", err)
	}

	if removed {
		s.recordActivity(ctx, followerAddress, types.ActivityUnfollow, map[string]string{
			"following": strings.ToLower(followingAddress),
		})
	}

	return nil
}

// GetFollowStatus reports whether follower follows following, plus the
// follower/following counts of the followed wallet
func (s *SocialService) GetFollowStatus(ctx context.Context, followerAddress, followingAddress string) (*FollowStatus, error) {
	if err := validateAddresses(followerAddress, followingAddress); err != nil {
		return nil, err
	}

	following, err := s.follows.IsFollowing(ctx, followerAddress, followingAddress)
	if err != nil {
		return nil, apperrors.NewDatabaseError("follow status", err)
	}

	followers, followingCount, err := s.follows.Counts(ctx, followingAddress)
	if err != nil {
		return nil, apperrors.NewDatabaseError("follow status", err)
	}

	return &FollowStatus{
		Following:      following,
		FollowerCount:  followers,
		FollowingCount: followingCount,
	}, nil
}

// ListFollowing returns the addresses a wallet follows
func (s *SocialService) ListFollowing(ctx context.Context, walletAddress string) ([]string, error) {
	if !marketdata.ValidateAddress(walletAddress) {
		return nil, apperrors.NewInvalidAddressError(walletAddress)
	}

	addresses, err := s.follows.ListFollowing(ctx, walletAddress)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list following", err)
	}
	return addresses, nil
}

// recordActivity appends a log entry, best-effort
func (s *SocialService) recordActivity(ctx context.Context, walletAddress string, activityType types.ActivityType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Failed to encode activity payload")
		return
	}

	activity := &types.Activity{
		WalletAddress: walletAddress,
		Type:          activityType,
		Data:          data,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("type", string(activityType)).
			Warn("Failed to record activity")
	}
}

func validateAddresses(addresses ...string) error {
	for _, address := range addresses {
		if !marketdata.ValidateAddress(address) {
			return apperrors.NewInvalidAddressError(address)
		}
	}
	return nil
}

// asServiceError unwraps a *types.ServiceError if err carries one
func asServiceError(err error, target **types.ServiceError) bool {
	svcErr, ok := err.(*types.ServiceError)
	if !ok {
		return false
	}
	*target = svcErr
	return true
}
