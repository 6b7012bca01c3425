// Package analysis derives trading style classifications and performance
// metrics from a wallet's transaction history. All functions are pure and
// total: any input, including an empty history, yields a well-defined result
// and never an error.
package analysis

import (
	"time"

	"github.com/wallet-pulse/internal/types"
)

const hoursPerDay = 24

// AverageHoldTime returns the mean elapsed days between adjacent swap pairs
// in the ordered transaction sequence, a proxy for position duration. Pairs
// where either swap lacks a timestamp count as a zero-day hold. Returns 0
// when the sequence contains no adjacent swap pair.
//
// Both the classifier and the performance analyzer call this; keeping it a
// single function guarantees the two report identical hold times.
func AverageHoldTime(transactions []types.Transaction) float64 {
	var holdTimes []float64
	for i := 0; i+1 < len(transactions); i++ {
		current := transactions[i]
		next := transactions[i+1]
		if current.Type != types.TxTypeSwap || next.Type != types.TxTypeSwap {
			continue
		}

		holdTime := 0.0
		if current.Timestamp != nil && next.Timestamp != nil {
			holdTime = next.Timestamp.Sub(*current.Timestamp).Hours() / hoursPerDay
		}
		holdTimes = append(holdTimes, holdTime)
	}

	if len(holdTimes) == 0 {
		return 0
	}

	sum := 0.0
	for _, h := range holdTimes {
		sum += h
	}
	return sum / float64(len(holdTimes))
}

// ActiveDays counts distinct calendar days with at least one transaction.
// Transactions without a timestamp collapse into a single unknown-date bucket.
func ActiveDays(transactions []types.Transaction) int {
	days := make(map[string]struct{})
	for _, tx := range transactions {
		key := "Unknown date"
		if tx.Timestamp != nil {
			key = tx.Timestamp.Format("2006-01-02")
		}
		days[key] = struct{}{}
	}
	return len(days)
}

// daysSince returns the elapsed days from t to now
func daysSince(now time.Time, t time.Time) float64 {
	return now.Sub(t).Hours() / hoursPerDay
}
