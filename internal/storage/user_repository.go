package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-pulse/internal/types"
)

// UserRepository handles user identity persistence. Users are keyed by
// wallet address; an address becomes a user the first time it is seen.
type UserRepository struct {
	db *PostgresDB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *PostgresDB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user for a wallet address, creating it on first
// sight. Addresses are stored lowercased so lookups are case-insensitive.
func (r *UserRepository) GetOrCreate(ctx context.Context, walletAddress string) (*types.User, error) {
	walletAddress = strings.ToLower(walletAddress)
	now := time.Now()

	query := `
		INSERT INTO users (id, wallet_address, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (wallet_address) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, wallet_address, ens_name, created_at, updated_at
	`

	var user types.User
	err := r.db.Pool().QueryRow(ctx, query, uuid.New().String(), walletAddress, now).Scan(
		&user.ID,
		&user.WalletAddress,
		&user.ENSName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return &user, nil
}

// GetByAddress retrieves a user by wallet address
func (r *UserRepository) GetByAddress(ctx context.Context, walletAddress string) (*types.User, error) {
	query := `
		SELECT id, wallet_address, ens_name, created_at, updated_at
		FROM users
		WHERE wallet_address = $1
	`

	var user types.User
	err := r.db.Pool().QueryRow(ctx, query, strings.ToLower(walletAddress)).Scan(
		&user.ID,
		&user.WalletAddress,
		&user.ENSName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %s", walletAddress)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
