package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wallet-pulse/internal/types"
)

// ActivityRepository handles the append-only social activity log
type ActivityRepository struct {
	db *PostgresDB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *PostgresDB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one activity entry. Entries are never updated or deleted.
func (r *ActivityRepository) Create(ctx context.Context, activity *types.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	activity.WalletAddress = strings.ToLower(activity.WalletAddress)

	var data []byte
	if len(activity.Data) > 0 {
		data = activity.Data
	}

	query := `
		INSERT INTO activities (id, wallet_address, type, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		activity.ID,
		activity.WalletAddress,
		activity.Type,
		data,
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

// ListByWallet returns a wallet's own activity entries, newest first
func (r *ActivityRepository) ListByWallet(ctx context.Context, walletAddress string, limit int) ([]*types.Activity, error) {
	query := `
		SELECT id, wallet_address, type, data, created_at
		FROM activities
		WHERE wallet_address = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, strings.ToLower(walletAddress), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// Feed returns the merged activity of every wallet the follower follows,
// newest first. A follower with no follows gets an empty feed.
func (r *ActivityRepository) Feed(ctx context.Context, followerAddress string, limit int) ([]*types.Activity, error) {
	query := `
		SELECT a.id, a.wallet_address, a.type, a.data, a.created_at
		FROM activities a
		JOIN follows f ON f.following_address = a.wallet_address
		WHERE f.follower_address = $1
		ORDER BY a.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, strings.ToLower(followerAddress), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity feed: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

type activityRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanActivities(rows activityRows) ([]*types.Activity, error) {
	var activities []*types.Activity
	for rows.Next() {
		var activity types.Activity
		var data []byte

		err := rows.Scan(
			&activity.ID,
			&activity.WalletAddress,
			&activity.Type,
			&data,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		if len(data) > 0 {
			activity.Data = json.RawMessage(data)
		}

		activities = append(activities, &activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}
