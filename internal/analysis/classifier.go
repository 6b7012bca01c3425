package analysis

import (
	"math"
	"time"

	"github.com/wallet-pulse/internal/types"
)

// recentWindow bounds which transactions count toward classification confidence
const recentWindow = 30 * 24 * time.Hour

// Classify derives a trading style from an ordered transaction history.
// Classification is total and deterministic: the same list always yields the
// same style, and an empty list yields the no-activity holder default.
//
// The rules form a hand-tuned decision tree evaluated in priority order;
// the first matching rule wins.
func Classify(transactions []types.Transaction) types.TradingStyle {
	return classifyAt(time.Now(), transactions)
}

func classifyAt(now time.Time, transactions []types.Transaction) types.TradingStyle {
	if len(transactions) == 0 {
		return types.TradingStyle{
			Type:       types.StyleHolder,
			Score:      0,
			Confidence: 0,
			Traits:     []string{"No trading activity"},
		}
	}

	recentCount := 0
	cutoff := now.Add(-recentWindow)
	for _, tx := range transactions {
		if tx.Timestamp != nil && tx.Timestamp.After(cutoff) {
			recentCount++
		}
	}

	swaps, transfers := 0, 0
	for _, tx := range transactions {
		switch tx.Type {
		case types.TxTypeSwap:
			swaps++
		case types.TxTypeTransfer:
			transfers++
		}
	}

	avgHold := AverageHoldTime(transactions)

	// Trading frequency anchored on the most recent transaction
	daysActive := defaultDaysActive
	if last := transactions[len(transactions)-1]; last.Timestamp != nil {
		daysActive = math.Max(1, daysSince(now, *last.Timestamp))
	}
	frequency := float64(len(transactions)) / daysActive

	risk := riskScoreAt(now, transactions)

	var (
		style      types.TradingStyleType
		score      float64
		confidence float64
		traits     []string
	)

	switch {
	// Degen: high frequency, short holds, high risk
	case frequency > 5 && avgHold < 1 && risk > 70:
		style = types.StyleDegen
		score = math.Min(100, frequency*10+float64(risk)*0.3)
		confidence = math.Min(100, float64(recentCount)*2)
		traits = []string{"High frequency trading", "Short-term holds", "High risk tolerance"}

	// Day trader: medium-high frequency, short holds
	case frequency > 2 && avgHold < 7:
		style = types.StyleDayTrader
		score = math.Min(100, frequency*8)
		confidence = math.Min(100, float64(recentCount)*1.5)
		traits = []string{"Daily trading activity", "Short-term positions"}

	// Yield farmer: transfer heavy, long holds
	case transfers > swaps && avgHold > 30:
		style = types.StyleYieldFarmer
		score = math.Min(100, avgHold/10+float64(transfers)*2)
		confidence = math.Min(100, avgHold)
		traits = []string{"Long-term holds", "DeFi participation", "Yield optimization"}

	// NFT collector: transfers dominate swaps outright
	case transfers > swaps*2:
		style = types.StyleNFTCollector
		score = math.Min(100, float64(transfers)*3)
		confidence = math.Min(100, float64(transfers))
		traits = []string{"NFT transactions", "Collection activity"}

	// Arbitrageur: swap heavy, short holds, low risk
	case swaps > transfers && avgHold < 3 && risk < 40:
		style = types.StyleArbitrageur
		score = math.Min(100, float64(swaps)*4)
		confidence = math.Min(100, float64(swaps)*1.2)
		traits = []string{"Arbitrage opportunities", "Low risk", "Efficient trading"}

	default:
		style = types.StyleHolder
		score = math.Min(100, avgHold*2)
		confidence = math.Min(100, avgHold/5)
		traits = []string{"Long-term holding", "Low activity", "Conservative approach"}
	}

	return types.TradingStyle{
		Type:       style,
		Score:      int(math.Round(score)),
		Confidence: int(math.Round(confidence)),
		Traits:     traits,
	}
}
