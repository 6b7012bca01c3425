package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-pulse/internal/types"
)

// TrendingRepository stores curated trending wallet lists per period.
// Lists are replaced wholesale by whatever process curates them; readers
// only ever see a complete ranked list.
type TrendingRepository struct {
	db *PostgresDB
}

// NewTrendingRepository creates a new trending repository
func NewTrendingRepository(db *PostgresDB) *TrendingRepository {
	return &TrendingRepository{db: db}
}

// ListByPeriod returns the ranked trending wallets for a period, best rank
// first, capped at limit
func (r *TrendingRepository) ListByPeriod(ctx context.Context, period string, limit int) ([]*types.TrendingWallet, error) {
	query := `
		SELECT wallet_address, rank, score, period
		FROM trending_wallets
		WHERE period = $1
		ORDER BY rank ASC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, period, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*types.TrendingWallet
	for rows.Next() {
		var wallet types.TrendingWallet
		err := rows.Scan(
			&wallet.WalletAddress,
			&wallet.Rank,
			&wallet.Score,
			&wallet.Period,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trending wallet: %w", err)
		}
		wallets = append(wallets, &wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trending wallets: %w", err)
	}

	return wallets, nil
}

// Replace atomically swaps the trending list for a period
func (r *TrendingRepository) Replace(ctx context.Context, period string, wallets []*types.TrendingWallet) error {
	tx, err := r.db.Pool().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // nolint:errcheck // no-op after commit
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM trending_wallets WHERE period = $1`, period); err != nil {
		return fmt.Errorf("failed to clear trending list: %w", err)
	}

	query := `
		INSERT INTO trending_wallets (wallet_address, rank, score, period)
		VALUES ($1, $2, $3, $4)
	`
	for _, wallet := range wallets {
		_, err := tx.Exec(ctx, query,
			strings.ToLower(wallet.WalletAddress),
			wallet.Rank,
			wallet.Score,
			period,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trending wallet: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit trending list: %w", err)
	}

	return nil
}
