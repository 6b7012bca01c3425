// Package marketdata implements the client for the upstream market data
// provider. It is the only package that knows the provider's wire format;
// everything it returns is normalized into the canonical types.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/config"
	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/retry"
	"github.com/wallet-pulse/internal/types"
)

const providerName = "market data provider"

// Client fetches portfolio, transaction and chart data for a wallet address.
// It authenticates with HTTP Basic auth: API key as username, empty password.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryCfg   *retry.Config
}

// TransactionParams controls transaction pagination
type TransactionParams struct {
	PageSize int
	Cursor   string
}

// TransactionPage is one page of transaction history with an optional
// continuation cursor
type TransactionPage struct {
	Data []types.Transaction `json:"data"`
	Next string              `json:"next,omitempty"`
}

// ChartResult holds normalized chart points plus provider range metadata
type ChartResult struct {
	Points  []types.ChartDataPoint
	BeginAt string
	EndAt   string
}

// NewClient creates a provider client. A missing API key is a configuration
// error: the client refuses to start rather than fabricate data.
func NewClient(cfg *config.ProviderConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewAuthError("provider API key not configured")
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryCfg:   retry.DefaultConfig(),
	}, nil
}

// ValidateAddress reports whether address is a well-formed wallet address
// (0x followed by 40 hex characters)
func ValidateAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// GetPortfolio fetches the current portfolio snapshot for an address
func (c *Client) GetPortfolio(ctx context.Context, address string) (*types.Portfolio, error) {
	if !ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	body, err := c.doRequest(ctx, fmt.Sprintf("/wallets/%s/portfolio", address), nil)
	if err != nil {
		return nil, err
	}

	var envelope portfolioEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewProviderError(providerName, http.StatusBadGateway,
			fmt.Sprintf("failed to parse portfolio response: %v", err))
	}

	return normalizePortfolio(address, &envelope), nil
}

// GetTransactions fetches one page of transaction history for an address.
// The provider returns transactions ordered oldest to newest.
func (c *Client) GetTransactions(ctx context.Context, address string, params TransactionParams) (*TransactionPage, error) {
	if !ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	query := url.Values{}
	if params.PageSize > 0 {
		query.Set("page[size]", strconv.Itoa(params.PageSize))
	}
	if params.Cursor != "" {
		query.Set("page[after]", params.Cursor)
	}

	body, err := c.doRequest(ctx, fmt.Sprintf("/wallets/%s/transactions", address), query)
	if err != nil {
		return nil, err
	}

	var envelope transactionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewProviderError(providerName, http.StatusBadGateway,
			fmt.Sprintf("failed to parse transaction response: %v", err))
	}

	return normalizeTransactions(&envelope), nil
}

// GetChart fetches portfolio value time series for a period. The 90d period
// aliases to the provider's month granularity; the provider has no closer
// match.
func (c *Client) GetChart(ctx context.Context, address string, period types.ChartPeriod) (*ChartResult, error) {
	if !ValidateAddress(address) {
		return nil, apperrors.NewInvalidAddressError(address)
	}

	query := url.Values{}
	query.Set("currency", "usd")

	endpoint := fmt.Sprintf("/wallets/%s/charts/%s", address, mapPeriod(period))
	body, err := c.doRequest(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	var envelope chartEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewProviderError(providerName, http.StatusBadGateway,
			fmt.Sprintf("failed to parse chart response: %v", err))
	}

	return normalizeChart(&envelope), nil
}

// GetPortfolioWithChart fetches portfolio and chart concurrently and merges
// the chart points into the snapshot. Fail-fast: the first error aborts both.
func (c *Client) GetPortfolioWithChart(ctx context.Context, address string, period types.ChartPeriod) (*types.Portfolio, error) {
	var (
		portfolio *types.Portfolio
		chart     *ChartResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		portfolio, err = c.GetPortfolio(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = c.GetChart(gctx, address, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	portfolio.ChartData = chart.Points
	return portfolio, nil
}

// mapPeriod maps our period vocabulary to the provider's
func mapPeriod(period types.ChartPeriod) string {
	switch period {
	case types.Period1D:
		return "day"
	case types.Period7D:
		return "week"
	case types.Period30D, types.Period90D:
		return "month"
	case types.Period1Y:
		return "year"
	case types.PeriodMax:
		return "max"
	default:
		return "month"
	}
}

// doRequest performs an authenticated GET with bounded retries. Network
// errors and 5xx responses are retried with exponential backoff; 400, 401
// and 429 are surfaced immediately as non-transient.
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	logger := logging.FromContext(ctx)

	var body []byte
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context, attempt int) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return false, apperrors.NewUnknownError(err)
		}
		req.SetBasicAuth(c.apiKey, "")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return true, apperrors.NewNetworkError(providerName, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, apperrors.NewNetworkError(providerName, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = data
			return false, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return false, apperrors.NewRateLimitError(providerName)
		case resp.StatusCode == http.StatusUnauthorized:
			return false, apperrors.NewAuthError("provider rejected API key")
		case resp.StatusCode >= 500:
			logger.WithFields(map[string]interface{}{
				"status":  resp.StatusCode,
				"attempt": attempt,
			}).Warn("Provider returned server error")
			return true, apperrors.NewProviderError(providerName, resp.StatusCode, providerMessage(data, resp.StatusCode))
		default:
			return false, apperrors.NewProviderError(providerName, resp.StatusCode, providerMessage(data, resp.StatusCode))
		}
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// providerMessage extracts an error message from a provider error body,
// falling back to the HTTP status text
func providerMessage(body []byte, statusCode int) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode))
}
