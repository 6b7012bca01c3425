package marketdata

import (
	"fmt"
	"time"

	"github.com/wallet-pulse/internal/types"
)

// Provider wire format. These structs mirror the provider's JSON:API-style
// envelopes and never leak outside this package.

type portfolioEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Total struct {
				Positions float64 `json:"positions"`
			} `json:"total"`
			Changes struct {
				Absolute1D float64 `json:"absolute_1d"`
			} `json:"changes"`
			Positions []positionData `json:"positions"`
		} `json:"attributes"`
	} `json:"data"`
}

type positionData struct {
	ID         string `json:"id"`
	Attributes struct {
		Quantity struct {
			Float float64 `json:"float"`
		} `json:"quantity"`
		Value   float64 `json:"value"`
		Changes struct {
			Absolute1D float64 `json:"absolute_1d"`
		} `json:"changes"`
		Price        float64  `json:"price"`
		FungibleInfo coinInfo `json:"fungible_info"`
	} `json:"attributes"`
}

type coinInfo struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Icon    *struct {
		URL string `json:"url"`
	} `json:"icon"`
	Changes struct {
		Percent1D float64 `json:"percent_1d"`
	} `json:"changes"`
}

type transactionEnvelope struct {
	Data  []transactionData `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type transactionData struct {
	ID         string `json:"id"`
	Attributes struct {
		Hash          string         `json:"hash"`
		OperationType string         `json:"operation_type"`
		MinedAt       string         `json:"mined_at"`
		BlockNumber   uint64         `json:"block_number"`
		SentFrom      string         `json:"sent_from"`
		SentTo        string         `json:"sent_to"`
		Status        string         `json:"status"`
		GasUsed       float64        `json:"gas_used"`
		GasPrice      float64        `json:"gas_price"`
		Transfers     []transferData `json:"transfers"`
	} `json:"attributes"`
}

type transferData struct {
	Direction string `json:"direction"`
	Quantity  struct {
		Numeric string  `json:"numeric"`
		Float   float64 `json:"float"`
	} `json:"quantity"`
	Value        float64  `json:"value"`
	Price        float64  `json:"price"`
	FungibleInfo coinInfo `json:"fungible_info"`
}

type chartEnvelope struct {
	Data struct {
		Attributes struct {
			BeginAt string       `json:"begin_at"`
			EndAt   string       `json:"end_at"`
			Points  [][2]float64 `json:"points"`
		} `json:"attributes"`
	} `json:"data"`
}

// normalizePortfolio converts a provider portfolio envelope to the canonical
// snapshot. Missing or unparseable fields normalize to zero values rather
// than failing the whole response.
func normalizePortfolio(address string, envelope *portfolioEnvelope) *types.Portfolio {
	attrs := envelope.Data.Attributes

	positions := make([]types.Position, 0, len(attrs.Positions))
	for _, p := range attrs.Positions {
		pos := types.Position{
			ID:             p.ID,
			Asset:          normalizeAsset(p.ID, p.Attributes.FungibleInfo, p.Attributes.Price),
			Quantity:       p.Attributes.Quantity.Float,
			Value:          p.Attributes.Value,
			ValueChange24h: p.Attributes.Changes.Absolute1D,
		}
		if attrs.Total.Positions > 0 {
			pos.Percentage = p.Attributes.Value / attrs.Total.Positions * 100
		}
		positions = append(positions, pos)
	}

	id := envelope.Data.ID
	if id == "" {
		id = address
	}

	return &types.Portfolio{
		ID:                  id,
		TotalValue:          attrs.Total.Positions,
		TotalValueChange24h: attrs.Changes.Absolute1D,
		Positions:           positions,
	}
}

// normalizeTransactions converts a provider transaction page to canonical
// transactions, preserving the provider's oldest-to-newest ordering
func normalizeTransactions(envelope *transactionEnvelope) *TransactionPage {
	transactions := make([]types.Transaction, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		attrs := item.Attributes

		tx := types.Transaction{
			ID:          item.ID,
			Hash:        attrs.Hash,
			Type:        normalizeOperationType(attrs.OperationType),
			FromAddress: attrs.SentFrom,
			ToAddress:   attrs.SentTo,
			Timestamp:   parseTimestamp(attrs.MinedAt),
			BlockNumber: attrs.BlockNumber,
			GasUsed:     attrs.GasUsed,
			GasPrice:    attrs.GasPrice,
			Status:      normalizeStatus(attrs.Status),
		}

		// The first transfer carries the headline asset and value
		if len(attrs.Transfers) > 0 {
			transfer := attrs.Transfers[0]
			tx.Value = transfer.Quantity.Float
			tx.ValueUSD = transfer.Value
			tx.Asset = normalizeAsset("", transfer.FungibleInfo, transfer.Price)
		}

		transactions = append(transactions, tx)
	}

	return &TransactionPage{
		Data: transactions,
		Next: envelope.Links.Next,
	}
}

// normalizeChart converts provider [timestamp, value] pairs to chart points.
// Timestamps are Unix seconds.
func normalizeChart(envelope *chartEnvelope) *ChartResult {
	attrs := envelope.Data.Attributes

	points := make([]types.ChartDataPoint, 0, len(attrs.Points))
	for _, p := range attrs.Points {
		points = append(points, types.ChartDataPoint{
			Timestamp: time.Unix(int64(p[0]), 0).UTC(),
			Value:     p[1],
		})
	}

	return &ChartResult{
		Points:  points,
		BeginAt: attrs.BeginAt,
		EndAt:   attrs.EndAt,
	}
}

func normalizeAsset(id string, info coinInfo, price float64) types.Asset {
	asset := types.Asset{
		ID:             id,
		Name:           info.Name,
		Symbol:         info.Symbol,
		Price:          price,
		PriceChange24h: info.Changes.Percent1D,
	}
	if info.Icon != nil {
		asset.ImageURL = info.Icon.URL
	}
	if asset.ID == "" {
		asset.ID = fmt.Sprintf("%s-%s", info.Symbol, info.Name)
	}
	return asset
}

// normalizeOperationType maps provider operation labels onto the closed
// transaction type set. Unrecognized labels normalize to transfer.
func normalizeOperationType(operation string) types.TransactionType {
	switch operation {
	case "trade", "swap":
		return types.TxTypeSwap
	case "send", "receive", "transfer", "deposit", "withdraw":
		return types.TxTypeTransfer
	case "approve", "approval":
		return types.TxTypeApproval
	case "mint":
		return types.TxTypeMint
	case "burn":
		return types.TxTypeBurn
	default:
		return types.TxTypeTransfer
	}
}

// normalizeStatus maps provider execution status. Unrecognized values
// normalize to failed so they never inflate win rates.
func normalizeStatus(status string) types.TransactionStatus {
	switch status {
	case "confirmed", "success":
		return types.StatusSuccess
	case "pending":
		return types.StatusPending
	default:
		return types.StatusFailed
	}
}

// parseTimestamp parses an RFC3339 timestamp, returning nil on absence or
// parse failure
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
