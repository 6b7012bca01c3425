package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/config"
	"github.com/wallet-pulse/internal/retry"
	"github.com/wallet-pulse/internal/types"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &Client{
		baseURL:    server.URL,
		apiKey:     "test-key",
		httpClient: server.Client(),
		retryCfg: &retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
	return client, server
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.ProviderConfig{BaseURL: "https://example.com", APIKey: ""})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if appErr := apperrors.Categorize(err); appErr.Category != apperrors.CategoryAuth {
		t.Errorf("Category = %s, want %s", appErr.Category, apperrors.CategoryAuth)
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{testAddress, true},
		{"0x" + strings.Repeat("A", 40), true},
		{strings.Repeat("a", 40), false},          // missing 0x prefix
		{"0x1234", false},                         // too short
		{"0x" + strings.Repeat("g", 40), false},   // not hex
		{"", false},
		{"vitalik.eth", false},
	}

	for _, tc := range tests {
		if got := ValidateAddress(tc.address); got != tc.want {
			t.Errorf("ValidateAddress(%q) = %v, want %v", tc.address, got, tc.want)
		}
	}
}

func TestGetPortfolioRejectsInvalidAddressWithoutCalling(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.GetPortfolio(context.Background(), "not-an-address")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr := apperrors.Categorize(err); appErr.Category != apperrors.CategoryValidation {
		t.Errorf("Category = %s, want %s", appErr.Category, apperrors.CategoryValidation)
	}
	if called {
		t.Error("provider was called for an invalid address")
	}
}

func TestGetPortfolioNormalization(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-key" || pass != "" {
			t.Errorf("unexpected auth: user=%q pass=%q ok=%v", user, pass, ok)
		}

		w.Write([]byte(`{
			"data": {
				"id": "portfolio-1",
				"attributes": {
					"total": {"positions": 1000},
					"changes": {"absolute_1d": -25.5},
					"positions": [
						{
							"id": "pos-1",
							"attributes": {
								"quantity": {"float": 2.5},
								"value": 750,
								"changes": {"absolute_1d": -20},
								"price": 300,
								"fungible_info": {"name": "Ether", "symbol": "ETH", "icon": {"url": "https://img/eth.png"}}
							}
						},
						{
							"id": "pos-2",
							"attributes": {
								"quantity": {"float": 250},
								"value": 250,
								"price": 1,
								"fungible_info": {"name": "USD Coin", "symbol": "USDC"}
							}
						}
					]
				}
			}
		}`))
	})

	portfolio, err := client.GetPortfolio(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}

	if portfolio.ID != "portfolio-1" {
		t.Errorf("ID = %q, want portfolio-1", portfolio.ID)
	}
	if portfolio.TotalValue != 1000 {
		t.Errorf("TotalValue = %v, want 1000", portfolio.TotalValue)
	}
	if portfolio.TotalValueChange24h != -25.5 {
		t.Errorf("TotalValueChange24h = %v, want -25.5", portfolio.TotalValueChange24h)
	}
	if len(portfolio.Positions) != 2 {
		t.Fatalf("Positions = %d, want 2", len(portfolio.Positions))
	}

	eth := portfolio.Positions[0]
	if eth.Asset.Symbol != "ETH" || eth.Asset.ImageURL != "https://img/eth.png" {
		t.Errorf("unexpected asset: %+v", eth.Asset)
	}
	if eth.Percentage != 75 {
		t.Errorf("Percentage = %v, want 75", eth.Percentage)
	}
}

func TestGetTransactionsNormalization(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page[size]"); got != "25" {
			t.Errorf("page[size] = %q, want 25", got)
		}
		if got := r.URL.Query().Get("page[after]"); got != "cursor-1" {
			t.Errorf("page[after] = %q, want cursor-1", got)
		}

		w.Write([]byte(`{
			"data": [
				{
					"id": "tx-1",
					"attributes": {
						"hash": "0xaaa",
						"operation_type": "trade",
						"mined_at": "2025-06-14T10:00:00Z",
						"status": "confirmed",
						"transfers": [
							{"direction": "out", "quantity": {"float": 1.5}, "value": 450, "price": 300, "fungible_info": {"name": "Ether", "symbol": "ETH"}}
						]
					}
				},
				{
					"id": "tx-2",
					"attributes": {
						"hash": "0xbbb",
						"operation_type": "levitate",
						"mined_at": "not-a-timestamp",
						"status": "exploded",
						"transfers": []
					}
				}
			],
			"links": {"next": "https://provider/next-page"}
		}`))
	})

	page, err := client.GetTransactions(context.Background(), testAddress, TransactionParams{
		PageSize: 25,
		Cursor:   "cursor-1",
	})
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}

	if len(page.Data) != 2 {
		t.Fatalf("Data = %d transactions, want 2", len(page.Data))
	}
	if page.Next != "https://provider/next-page" {
		t.Errorf("Next = %q", page.Next)
	}

	trade := page.Data[0]
	if trade.Type != types.TxTypeSwap || trade.Status != types.StatusSuccess {
		t.Errorf("trade normalized to %s/%s", trade.Type, trade.Status)
	}
	if trade.Timestamp == nil || !trade.Timestamp.Equal(time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", trade.Timestamp)
	}
	if trade.ValueUSD != 450 || trade.Value != 1.5 || trade.Asset.Symbol != "ETH" {
		t.Errorf("unexpected trade values: %+v", trade)
	}

	// Unknown fields normalize fail-closed: transfer type, failed status,
	// nil timestamp, zero values
	unknown := page.Data[1]
	if unknown.Type != types.TxTypeTransfer {
		t.Errorf("unknown operation type normalized to %s, want transfer", unknown.Type)
	}
	if unknown.Status != types.StatusFailed {
		t.Errorf("unknown status normalized to %s, want failed", unknown.Status)
	}
	if unknown.Timestamp != nil {
		t.Errorf("unparseable timestamp = %v, want nil", unknown.Timestamp)
	}
	if unknown.ValueUSD != 0 {
		t.Errorf("ValueUSD = %v, want 0", unknown.ValueUSD)
	}
}

func TestGetChartPeriodMapping(t *testing.T) {
	var requestedPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Write([]byte(`{
			"data": {
				"attributes": {
					"begin_at": "2025-05-15T00:00:00Z",
					"end_at": "2025-06-15T00:00:00Z",
					"points": [[1749600000, 900.5], [1749686400, 950]]
				}
			}
		}`))
	})

	chart, err := client.GetChart(context.Background(), testAddress, types.Period90D)
	if err != nil {
		t.Fatalf("GetChart: %v", err)
	}

	// 90d aliases to the provider's month granularity
	if !strings.HasSuffix(requestedPath, "/charts/month") {
		t.Errorf("path = %q, want /charts/month suffix", requestedPath)
	}
	if len(chart.Points) != 2 {
		t.Fatalf("Points = %d, want 2", len(chart.Points))
	}
	if chart.Points[0].Value != 900.5 {
		t.Errorf("Points[0].Value = %v, want 900.5", chart.Points[0].Value)
	}
	if chart.Points[0].Timestamp != time.Unix(1749600000, 0).UTC() {
		t.Errorf("Points[0].Timestamp = %v", chart.Points[0].Timestamp)
	}
}

func TestMapPeriod(t *testing.T) {
	tests := map[types.ChartPeriod]string{
		types.Period1D:  "day",
		types.Period7D:  "week",
		types.Period30D: "month",
		types.Period90D: "month",
		types.Period1Y:  "year",
		types.PeriodMax: "max",
	}
	for period, want := range tests {
		if got := mapPeriod(period); got != want {
			t.Errorf("mapPeriod(%s) = %q, want %q", period, got, want)
		}
	}
}

func TestRateLimitNotRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetPortfolio(context.Background(), testAddress)
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (429 must not be retried)", attempts)
	}
}

func TestAuthErrorNotRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetPortfolio(context.Background(), testAddress)
	if appErr := apperrors.Categorize(err); appErr.Category != apperrors.CategoryAuth {
		t.Fatalf("Category = %s, want %s", appErr.Category, apperrors.CategoryAuth)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (401 must not be retried)", attempts)
	}
}

func TestServerErrorRetriedThenSurfaced(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message": "upstream exploded"}`))
	})

	_, err := client.GetPortfolio(context.Background(), testAddress)
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (5xx is retried to the attempt budget)", attempts)
	}

	appErr := apperrors.Categorize(err)
	if appErr.Category != apperrors.CategoryProvider {
		t.Errorf("Category = %s, want %s", appErr.Category, apperrors.CategoryProvider)
	}
	if appErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", appErr.StatusCode)
	}
	if appErr.Message != "upstream exploded" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestServerErrorRecovery(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data": {"attributes": {"total": {"positions": 42}}}}`))
	})

	portfolio, err := client.GetPortfolio(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("GetPortfolio after recovery: %v", err)
	}
	if portfolio.TotalValue != 42 {
		t.Errorf("TotalValue = %v, want 42", portfolio.TotalValue)
	}
}

func TestGetPortfolioWithChartMerges(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/charts/") {
			w.Write([]byte(`{"data": {"attributes": {"points": [[1749600000, 100]]}}}`))
			return
		}
		w.Write([]byte(`{"data": {"attributes": {"total": {"positions": 100}}}}`))
	})

	portfolio, err := client.GetPortfolioWithChart(context.Background(), testAddress, types.Period7D)
	if err != nil {
		t.Fatalf("GetPortfolioWithChart: %v", err)
	}
	if portfolio.TotalValue != 100 {
		t.Errorf("TotalValue = %v, want 100", portfolio.TotalValue)
	}
	if len(portfolio.ChartData) != 1 {
		t.Errorf("ChartData = %d points, want 1", len(portfolio.ChartData))
	}
}
