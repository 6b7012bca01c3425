package analysis

import (
	"testing"
	"time"

	"github.com/wallet-pulse/internal/types"
)

func TestAverageHoldTimeNoSwapPairs(t *testing.T) {
	cases := map[string][]types.Transaction{
		"empty":     nil,
		"one swap":  {tx(types.TxTypeSwap, ts(2*day), 100)},
		"transfers": {tx(types.TxTypeTransfer, ts(3*day), 100), tx(types.TxTypeTransfer, ts(1*day), 100)},
		"swaps separated by transfer": {
			tx(types.TxTypeSwap, ts(5*day), 100),
			tx(types.TxTypeTransfer, ts(3*day), 100),
			tx(types.TxTypeSwap, ts(1*day), 100),
		},
	}

	for name, transactions := range cases {
		if got := AverageHoldTime(transactions); got != 0 {
			t.Errorf("%s: AverageHoldTime = %v, want 0", name, got)
		}
	}
}

func TestAverageHoldTimeAdjacentSwaps(t *testing.T) {
	// Holds of 1 day and 3 days between adjacent swaps
	transactions := []types.Transaction{
		tx(types.TxTypeSwap, ts(5*day), 100),
		tx(types.TxTypeSwap, ts(4*day), 100),
		tx(types.TxTypeSwap, ts(1*day), 100),
	}

	if got := AverageHoldTime(transactions); got != 2 {
		t.Errorf("AverageHoldTime = %v, want 2", got)
	}
}

func TestAverageHoldTimeMissingTimestamp(t *testing.T) {
	// A pair with a missing timestamp counts as a zero-day hold, dragging the
	// mean down instead of being dropped
	transactions := []types.Transaction{
		tx(types.TxTypeSwap, ts(5*day), 100),
		tx(types.TxTypeSwap, nil, 100),
		tx(types.TxTypeSwap, ts(1*day), 100),
	}

	if got := AverageHoldTime(transactions); got != 0 {
		t.Errorf("AverageHoldTime = %v, want 0", got)
	}
}

func TestActiveDays(t *testing.T) {
	sameDayMorning := testNow.Add(-2 * time.Hour)
	sameDayNoon := testNow.Add(-1 * time.Hour)

	tests := []struct {
		name         string
		transactions []types.Transaction
		want         int
	}{
		{"empty", nil, 0},
		{
			"same calendar day",
			[]types.Transaction{
				tx(types.TxTypeSwap, &sameDayMorning, 100),
				tx(types.TxTypeSwap, &sameDayNoon, 100),
			},
			1,
		},
		{
			"three distinct days",
			[]types.Transaction{
				tx(types.TxTypeSwap, ts(3*day), 100),
				tx(types.TxTypeSwap, ts(2*day), 100),
				tx(types.TxTypeSwap, ts(1*day), 100),
			},
			3,
		},
		{
			"missing timestamps collapse into one bucket",
			[]types.Transaction{
				tx(types.TxTypeSwap, nil, 100),
				tx(types.TxTypeSwap, nil, 100),
				tx(types.TxTypeSwap, ts(1*day), 100),
			},
			2,
		},
	}

	for _, tc := range tests {
		if got := ActiveDays(tc.transactions); got != tc.want {
			t.Errorf("%s: ActiveDays = %d, want %d", tc.name, got, tc.want)
		}
	}
}
