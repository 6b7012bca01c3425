package analysis

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wallet-pulse/internal/types"
)

func TestRiskScoreEmpty(t *testing.T) {
	if got := RiskScore(nil); got != 0 {
		t.Errorf("RiskScore(nil) = %d, want 0", got)
	}
}

func TestRiskScoreUniformValues(t *testing.T) {
	// 10 transactions over 10 days, equal values, no gas, no failures:
	// frequency factor 5, volatility factor 0, failure factor 0, gas skipped.
	// Mean over 3 contributing factors: 5/3 rounds to 2.
	var transactions []types.Transaction
	for i := 0; i < 10; i++ {
		transactions = append(transactions, tx(types.TxTypeSwap, ts(10*day-time.Duration(i)*time.Hour), 100))
	}

	if got := riskScoreAt(testNow, transactions); got != 2 {
		t.Errorf("riskScoreAt = %d, want 2", got)
	}
}

func TestRiskScoreAllFailedUntimed(t *testing.T) {
	// Single failed transaction without a timestamp: frequency uses the
	// 30-day default (1/30*5), failure factor hits its 25 cap. Gas and
	// volatility never fire, so the mean runs over 2 factors.
	transactions := []types.Transaction{failedTx(types.TxTypeSwap, nil, 0)}

	if got := riskScoreAt(testNow, transactions); got != 13 {
		t.Errorf("riskScoreAt = %d, want 13", got)
	}
}

func TestRiskScoreGasFactorCapped(t *testing.T) {
	// Extreme gas usage is capped at a contribution of 20
	transactions := []types.Transaction{
		{Type: types.TxTypeSwap, Timestamp: ts(1 * day), GasUsed: 10_000_000, Status: types.StatusSuccess},
		{Type: types.TxTypeSwap, Timestamp: ts(12 * time.Hour), GasUsed: 10_000_000, Status: types.StatusSuccess},
	}

	// frequency min(30, 2/1*5)=10, gas capped 20, failure 0; 30/3 = 10
	if got := riskScoreAt(testNow, transactions); got != 10 {
		t.Errorf("riskScoreAt = %d, want 10", got)
	}
}

func TestRiskScoreBoundsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("risk score stays within [0, 100]", prop.ForAll(
		func(values []float64) bool {
			transactions := make([]types.Transaction, len(values))
			for i, v := range values {
				transaction := types.Transaction{
					Type:     types.TxTypeSwap,
					ValueUSD: v,
					GasUsed:  v * 10,
					Status:   types.StatusSuccess,
				}
				if i%3 == 0 {
					transaction.Status = types.StatusFailed
				}
				if i%4 != 0 {
					transaction.Timestamp = ts(time.Duration(i) * time.Hour)
				}
				transactions[i] = transaction
			}

			score := riskScoreAt(testNow, transactions)
			return score >= 0 && score <= 100
		},
		gen.SliceOf(gen.Float64Range(0, 1_000_000)),
	))

	properties.TestingRun(t)
}
