package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-pulse/internal/types"
)

// WalletProfileRepository persists derived wallet profile snapshots.
// Profiles are written on every stats aggregation (upsert-on-write), so the
// stored row is always the most recent successful computation.
type WalletProfileRepository struct {
	db *PostgresDB
}

// NewWalletProfileRepository creates a new wallet profile repository
func NewWalletProfileRepository(db *PostgresDB) *WalletProfileRepository {
	return &WalletProfileRepository{db: db}
}

// Upsert writes a profile snapshot, replacing any previous one for the address
func (r *WalletProfileRepository) Upsert(ctx context.Context, profile *types.WalletProfile) error {
	profile.WalletAddress = strings.ToLower(profile.WalletAddress)
	if profile.LastUpdated.IsZero() {
		profile.LastUpdated = time.Now()
	}

	traitsJSON, err := json.Marshal(profile.Traits)
	if err != nil {
		return fmt.Errorf("failed to marshal traits: %w", err)
	}

	query := `
		INSERT INTO wallet_profiles (
			wallet_address, ens_name, total_value, value_change_24h,
			total_trades, active_days, win_rate, avg_hold_time,
			risk_score, trading_style, confidence, traits, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (wallet_address) DO UPDATE SET
			ens_name = EXCLUDED.ens_name,
			total_value = EXCLUDED.total_value,
			value_change_24h = EXCLUDED.value_change_24h,
			total_trades = EXCLUDED.total_trades,
			active_days = EXCLUDED.active_days,
			win_rate = EXCLUDED.win_rate,
			avg_hold_time = EXCLUDED.avg_hold_time,
			risk_score = EXCLUDED.risk_score,
			trading_style = EXCLUDED.trading_style,
			confidence = EXCLUDED.confidence,
			traits = EXCLUDED.traits,
			last_updated = EXCLUDED.last_updated
	`

	_, err = r.db.Pool().Exec(ctx, query,
		profile.WalletAddress,
		profile.ENSName,
		profile.TotalValue,
		profile.ValueChange24h,
		profile.TotalTrades,
		profile.ActiveDays,
		profile.WinRate,
		profile.AvgHoldTime,
		profile.RiskScore,
		profile.TradingStyle,
		profile.Confidence,
		traitsJSON,
		profile.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet profile: %w", err)
	}

	return nil
}

// GetByAddress retrieves the stored profile snapshot for a wallet address
func (r *WalletProfileRepository) GetByAddress(ctx context.Context, walletAddress string) (*types.WalletProfile, error) {
	query := `
		SELECT wallet_address, ens_name, total_value, value_change_24h,
		       total_trades, active_days, win_rate, avg_hold_time,
		       risk_score, trading_style, confidence, traits, last_updated
		FROM wallet_profiles
		WHERE wallet_address = $1
	`

	var profile types.WalletProfile
	var traitsJSON []byte

	err := r.db.Pool().QueryRow(ctx, query, strings.ToLower(walletAddress)).Scan(
		&profile.WalletAddress,
		&profile.ENSName,
		&profile.TotalValue,
		&profile.ValueChange24h,
		&profile.TotalTrades,
		&profile.ActiveDays,
		&profile.WinRate,
		&profile.AvgHoldTime,
		&profile.RiskScore,
		&profile.TradingStyle,
		&profile.Confidence,
		&traitsJSON,
		&profile.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("wallet profile not found: %s", walletAddress)
		}
		return nil, fmt.Errorf("failed to get wallet profile: %w", err)
	}

	if len(traitsJSON) > 0 {
		if err := json.Unmarshal(traitsJSON, &profile.Traits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal traits: %w", err)
		}
	}

	return &profile, nil
}
