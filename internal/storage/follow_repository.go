package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wallet-pulse/internal/types"
)

// FollowRepository handles the directed follow edges of the social graph.
// Edges are keyed by (follower, following) address pair; both writes are
// idempotent so repeated follow or unfollow calls converge on the same
// graph state.
type FollowRepository struct {
	db *PostgresDB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *PostgresDB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow creates a follow edge. Following an already-followed wallet is a
// no-op; created reports whether a new edge was written.
func (r *FollowRepository) Follow(ctx context.Context, followerAddress, followingAddress string) (created bool, err error) {
	followerAddress = strings.ToLower(followerAddress)
	followingAddress = strings.ToLower(followingAddress)

	if followerAddress == followingAddress {
		return false, &types.ServiceError{
			Code:    "SELF_FOLLOW",
			Message: "a wallet cannot follow itself",
			Details: map[string]interface{}{"address": followerAddress},
		}
	}

	query := `
		INSERT INTO follows (id, follower_address, following_address, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (follower_address, following_address) DO NOTHING
	`

	result, err := r.db.Pool().Exec(ctx, query,
		uuid.New().String(),
		followerAddress,
		followingAddress,
		time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Unfollow removes a follow edge. Unfollowing a wallet that is not followed
// is a no-op; removed reports whether an edge existed.
func (r *FollowRepository) Unfollow(ctx context.Context, followerAddress, followingAddress string) (removed bool, err error) {
	query := `
		DELETE FROM follows
		WHERE follower_address = $1 AND following_address = $2
	`

	result, err := r.db.Pool().Exec(ctx, query,
		strings.ToLower(followerAddress),
		strings.ToLower(followingAddress),
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove follow: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// IsFollowing reports whether a follow edge exists
func (r *FollowRepository) IsFollowing(ctx context.Context, followerAddress, followingAddress string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM follows
			WHERE follower_address = $1 AND following_address = $2
		)
	`

	err := r.db.Pool().QueryRow(ctx, query,
		strings.ToLower(followerAddress),
		strings.ToLower(followingAddress),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}

	return exists, nil
}

// ListFollowing returns the addresses a wallet follows, newest edge first
func (r *FollowRepository) ListFollowing(ctx context.Context, followerAddress string) ([]string, error) {
	query := `
		SELECT following_address
		FROM follows
		WHERE follower_address = $1
		ORDER BY created_at DESC
	`

	return r.listAddresses(ctx, query, strings.ToLower(followerAddress))
}

// ListFollowers returns the addresses following a wallet, newest edge first
func (r *FollowRepository) ListFollowers(ctx context.Context, followingAddress string) ([]string, error) {
	query := `
		SELECT follower_address
		FROM follows
		WHERE following_address = $1
		ORDER BY created_at DESC
	`

	return r.listAddresses(ctx, query, strings.ToLower(followingAddress))
}

// Counts returns follower and following counts for a wallet
func (r *FollowRepository) Counts(ctx context.Context, walletAddress string) (followers int64, following int64, err error) {
	walletAddress = strings.ToLower(walletAddress)
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_address = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_address = $1)
	`

	err = r.db.Pool().QueryRow(ctx, query, walletAddress).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count follows: %w", err)
	}

	return followers, following, nil
}

func (r *FollowRepository) listAddresses(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.db.Pool().Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}

	return addresses, nil
}
