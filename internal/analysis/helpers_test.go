package analysis

import (
	"time"

	"github.com/wallet-pulse/internal/types"
)

// fixed reference time so classification and risk scoring are deterministic
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ts(ago time.Duration) *time.Time {
	t := testNow.Add(-ago)
	return &t
}

func tx(txType types.TransactionType, timestamp *time.Time, valueUSD float64) types.Transaction {
	return types.Transaction{
		Type:      txType,
		Timestamp: timestamp,
		ValueUSD:  valueUSD,
		Status:    types.StatusSuccess,
	}
}

func failedTx(txType types.TransactionType, timestamp *time.Time, valueUSD float64) types.Transaction {
	t := tx(txType, timestamp, valueUSD)
	t.Status = types.StatusFailed
	return t
}

const day = 24 * time.Hour
