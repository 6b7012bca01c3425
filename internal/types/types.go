// Package types provides common type definitions for the wallet pulse system.
package types

import (
	"encoding/json"
	"time"
)

// TransactionType represents the kind of on-chain event
type TransactionType string

const (
	// TxTypeSwap represents a token swap
	TxTypeSwap TransactionType = "swap"
	// TxTypeTransfer represents a plain token or native transfer
	TxTypeTransfer TransactionType = "transfer"
	// TxTypeApproval represents a spending approval
	TxTypeApproval TransactionType = "approval"
	// TxTypeMint represents a mint event
	TxTypeMint TransactionType = "mint"
	// TxTypeBurn represents a burn event
	TxTypeBurn TransactionType = "burn"
)

// TransactionStatus represents transaction execution status
type TransactionStatus string

const (
	// StatusSuccess represents a successful transaction
	StatusSuccess TransactionStatus = "success"
	// StatusFailed represents a failed transaction
	StatusFailed TransactionStatus = "failed"
	// StatusPending represents a transaction not yet confirmed
	StatusPending TransactionStatus = "pending"
)

// TradingStyleType is the closed set of trading style labels
type TradingStyleType string

const (
	StyleDegen        TradingStyleType = "degen"
	StyleHolder       TradingStyleType = "holder"
	StyleYieldFarmer  TradingStyleType = "yield_farmer"
	StyleNFTCollector TradingStyleType = "nft_collector"
	StyleDayTrader    TradingStyleType = "day_trader"
	StyleArbitrageur  TradingStyleType = "arbitrageur"
)

// ChartPeriod represents supported chart time windows
type ChartPeriod string

const (
	Period1D  ChartPeriod = "1d"
	Period7D  ChartPeriod = "7d"
	Period30D ChartPeriod = "30d"
	Period90D ChartPeriod = "90d"
	Period1Y  ChartPeriod = "1y"
	PeriodMax ChartPeriod = "max"
)

// ParseChartPeriod validates a period string against the closed period set
func ParseChartPeriod(s string) (ChartPeriod, bool) {
	switch ChartPeriod(s) {
	case Period1D, Period7D, Period30D, Period90D, Period1Y, PeriodMax:
		return ChartPeriod(s), true
	default:
		return "", false
	}
}

// ActivityType tags entries in the activity log
type ActivityType string

const (
	ActivityFollow             ActivityType = "follow"
	ActivityUnfollow           ActivityType = "unfollow"
	ActivityTransactionCreated ActivityType = "transaction_created"
	ActivityPortfolioUpdated   ActivityType = "portfolio_updated"
	ActivityDetected           ActivityType = "activity_detected"
)

// SignalAction represents the direction of a trading signal
type SignalAction string

const (
	SignalBuy  SignalAction = "buy"
	SignalSell SignalAction = "sell"
	SignalSwap SignalAction = "swap"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Asset represents a fungible or non-fungible asset referenced by a transaction
type Asset struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	ImageURL       string  `json:"image_url,omitempty"`
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// Transaction represents one on-chain event attributed to a wallet.
// Transactions are fetched fresh from the upstream provider per request and
// are never persisted; the provider returns them ordered oldest to newest,
// and the analysis package relies on that ordering.
type Transaction struct {
	ID          string            `json:"id"`
	Hash        string            `json:"hash"`
	Type        TransactionType   `json:"type"`
	FromAddress string            `json:"from_address"`
	ToAddress   string            `json:"to_address"`
	Value       float64           `json:"value"`
	ValueUSD    float64           `json:"value_usd"`
	Asset       Asset             `json:"asset"`
	Timestamp   *time.Time        `json:"timestamp"` // nil when the provider omits it
	BlockNumber uint64            `json:"block_number"`
	GasUsed     float64           `json:"gas_used"`
	GasPrice    float64           `json:"gas_price"`
	Status      TransactionStatus `json:"status"`
	Metadata    json.RawMessage   `json:"metadata,omitempty"`
}

// Position represents a single holding inside a portfolio
type Position struct {
	ID             string  `json:"id"`
	Asset          Asset   `json:"asset"`
	Quantity       float64 `json:"quantity"`
	Value          float64 `json:"value"`
	ValueChange24h float64 `json:"value_change_24h"`
	Percentage     float64 `json:"percentage"`
}

// ChartDataPoint is one point of a portfolio value time series
type ChartDataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Change24h float64   `json:"change_24h"`
}

// Portfolio is a point-in-time snapshot of a wallet's holdings.
// TotalValueChange24h is an absolute USD delta (the provider's absolute_1d
// field), not a percentage.
type Portfolio struct {
	ID                  string           `json:"id"`
	TotalValue          float64          `json:"total_value"`
	TotalValueChange24h float64          `json:"total_value_change_24h"`
	Positions           []Position       `json:"positions"`
	ChartData           []ChartDataPoint `json:"chart_data"`
}

// TradingStyle is the derived classification of a wallet's transaction pattern
type TradingStyle struct {
	Type       TradingStyleType `json:"type"`
	Score      int              `json:"score"`      // 0-100
	Confidence int              `json:"confidence"` // 0-100
	Traits     []string         `json:"traits"`
}

// PerformanceMetrics holds derived performance statistics for a wallet
type PerformanceMetrics struct {
	TotalTrades     int     `json:"total_trades"`
	WinRate         float64 `json:"win_rate"`
	AverageHoldTime float64 `json:"average_hold_time"` // days
	ProfitFactor    float64 `json:"profit_factor"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	BestTrade       float64 `json:"best_trade"`
	WorstTrade      float64 `json:"worst_trade"`
	RiskScore       int     `json:"risk_score"`
}

// TopHolding is the portfolio's largest position, shown on the profile card
type TopHolding struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// WalletStats is the aggregate view-model for a wallet profile.
// ValueChange7d and ValueChange30d are always zero until a historical
// snapshot source exists.
type WalletStats struct {
	TotalValue     float64            `json:"total_value"`
	ValueChange24h float64            `json:"value_change_24h"`
	ValueChange7d  float64            `json:"value_change_7d"`
	ValueChange30d float64            `json:"value_change_30d"`
	TotalTrades    int                `json:"total_trades"`
	ActiveDays     int                `json:"active_days"`
	TopHolding     TopHolding         `json:"top_holding"`
	TradingStyle   TradingStyle       `json:"trading_style"`
	Performance    PerformanceMetrics `json:"performance"`
}

// User represents a known wallet identity
type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	ENSName       *string   `json:"ensName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Activity is one append-only entry in the social activity log
type Activity struct {
	ID            string          `json:"id"`
	WalletAddress string          `json:"walletAddress"`
	Type          ActivityType    `json:"type"`
	Data          json.RawMessage `json:"data,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// WalletProfile is the persisted snapshot of a wallet's derived stats
type WalletProfile struct {
	WalletAddress  string    `json:"walletAddress"`
	ENSName        *string   `json:"ensName,omitempty"`
	TotalValue     float64   `json:"totalValue"`
	ValueChange24h float64   `json:"valueChange24h"`
	TotalTrades    int       `json:"totalTrades"`
	ActiveDays     int       `json:"activeDays"`
	WinRate        float64   `json:"winRate"`
	AvgHoldTime    float64   `json:"avgHoldTime"`
	RiskScore      int       `json:"riskScore"`
	TradingStyle   string    `json:"tradingStyle"`
	Confidence     int       `json:"confidence"`
	Traits         []string  `json:"traits"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// TrendingWallet is one ranked entry of the trending list for a period
type TrendingWallet struct {
	WalletAddress string  `json:"walletAddress"`
	Rank          int     `json:"rank"`
	Score         float64 `json:"score"`
	Period        string  `json:"period"`
}

// TradingSignal is a buy/sell/swap signal derived from a followed wallet's
// recent transactions
type TradingSignal struct {
	ID            string       `json:"id"`
	WalletAddress string       `json:"walletAddress"`
	WalletName    *string      `json:"walletName"`
	Action        SignalAction `json:"action"`
	Token         string       `json:"token"`
	Amount        string       `json:"amount"`
	ValueUSD      float64      `json:"valueUsd"`
	Timestamp     time.Time    `json:"timestamp"`
	TxHash        string       `json:"txHash"`
}
