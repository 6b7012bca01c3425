package analysis

import (
	"math"
	"time"

	"github.com/wallet-pulse/internal/types"
)

// defaultDaysActive is assumed when the anchoring transaction has no timestamp
const defaultDaysActive = 30.0

// RiskScore scores how risky a wallet's transaction pattern looks, as an
// integer in [0, 100]. Empty input scores 0.
//
// Four factors contribute: transaction frequency (cap 30), average gas usage
// (cap 20, only when gas data is present), value volatility as coefficient of
// variation (cap 25, only with two or more positive-value transactions), and
// failure rate (cap 25). The final score is the mean over the factors that
// actually contributed, so the denominator depends on the data.
func RiskScore(transactions []types.Transaction) int {
	return riskScoreAt(time.Now(), transactions)
}

func riskScoreAt(now time.Time, transactions []types.Transaction) int {
	if len(transactions) == 0 {
		return 0
	}

	score := 0.0
	factors := 0

	// Factor 1: transaction frequency since the first transaction
	daysActive := defaultDaysActive
	if first := transactions[0]; first.Timestamp != nil {
		daysActive = daysSince(now, *first.Timestamp)
	}
	frequency := float64(len(transactions)) / math.Max(1, daysActive)
	score += math.Min(30, frequency*5)
	factors++

	// Factor 2: gas usage (higher gas = more urgent trades)
	gasSum, gasCount := 0.0, 0
	for _, tx := range transactions {
		if tx.GasUsed > 0 {
			gasSum += tx.GasUsed
			gasCount++
		}
	}
	if gasCount > 0 {
		avgGas := gasSum / float64(gasCount)
		score += math.Min(20, avgGas/100000)
		factors++
	}

	// Factor 3: transaction value volatility
	var values []float64
	for _, tx := range transactions {
		if tx.ValueUSD > 0 {
			values = append(values, tx.ValueUSD)
		}
	}
	if len(values) > 1 {
		mean, stddev := meanStddev(values)
		volatility := stddev / mean
		score += math.Min(25, volatility*100)
		factors++
	}

	// Factor 4: failed transactions
	failed := 0
	for _, tx := range transactions {
		if tx.Status == types.StatusFailed {
			failed++
		}
	}
	score += math.Min(25, float64(failed)/float64(len(transactions))*100)
	factors++

	return int(math.Round(score / float64(factors)))
}

// meanStddev returns the mean and population standard deviation of values
func meanStddev(values []float64) (float64, float64) {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
