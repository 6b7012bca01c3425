package analysis

import (
	"math"

	"github.com/wallet-pulse/internal/types"
)

// profitFactorCap is returned when a wallet has profits but no losses
const profitFactorCap = 10

// Analyze computes performance metrics from a portfolio snapshot and ordered
// transaction history. An empty history yields the all-zero metrics struct.
func Analyze(portfolio types.Portfolio, transactions []types.Transaction) types.PerformanceMetrics {
	if len(transactions) == 0 {
		return types.PerformanceMetrics{}
	}

	totalTrades := len(transactions)

	// Win rate: share of transactions with a positive USD value
	profitable := 0
	for _, tx := range transactions {
		if tx.ValueUSD > 0 {
			profitable++
		}
	}
	winRate := float64(profitable) / float64(totalTrades) * 100

	avgHoldTime := AverageHoldTime(transactions)

	// Profit factor: gross profit over gross loss
	totalProfit, totalLoss := 0.0, 0.0
	for _, tx := range transactions {
		if tx.ValueUSD > 0 {
			totalProfit += tx.ValueUSD
		} else if tx.ValueUSD < 0 {
			totalLoss += -tx.ValueUSD
		}
	}
	profitFactor := 0.0
	switch {
	case totalLoss > 0:
		profitFactor = totalProfit / totalLoss
	case totalProfit > 0:
		profitFactor = profitFactorCap
	}

	// Simplified, unannualized Sharpe ratio over nonzero transaction values
	var returns []float64
	for _, tx := range transactions {
		if tx.ValueUSD != 0 {
			returns = append(returns, tx.ValueUSD)
		}
	}
	sharpeRatio := 0.0
	if len(returns) > 0 {
		mean, stddev := meanStddev(returns)
		if stddev > 0 {
			sharpeRatio = mean / stddev
		}
	}

	// Max drawdown over a synthetic equity curve built from the running sum
	// of signed transaction values. This is an approximation: large one-off
	// transfers unrelated to trading P&L distort it.
	maxDrawdown := 0.0
	peak, current := 0.0, 0.0
	for _, tx := range transactions {
		current += tx.ValueUSD
		if current > peak {
			peak = current
		}
		if peak > 0 {
			if drawdown := (peak - current) / peak; drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	bestTrade, worstTrade := transactions[0].ValueUSD, transactions[0].ValueUSD
	for _, tx := range transactions[1:] {
		if tx.ValueUSD > bestTrade {
			bestTrade = tx.ValueUSD
		}
		if tx.ValueUSD < worstTrade {
			worstTrade = tx.ValueUSD
		}
	}

	return types.PerformanceMetrics{
		TotalTrades:     totalTrades,
		WinRate:         round2(winRate),
		AverageHoldTime: round2(avgHoldTime),
		ProfitFactor:    round2(profitFactor),
		SharpeRatio:     round2(sharpeRatio),
		MaxDrawdown:     round2(maxDrawdown),
		BestTrade:       round2(bestTrade),
		WorstTrade:      round2(worstTrade),
		RiskScore:       RiskScore(transactions),
	}
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
