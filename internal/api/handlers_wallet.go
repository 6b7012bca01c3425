package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wallet-pulse/internal/types"
)

const (
	// defaultTransactionPageSize is used when the client gives no page_size
	defaultTransactionPageSize = 50
	// maxTransactionPageSize caps the transaction page size
	maxTransactionPageSize = 100
)

// handleGetPortfolio handles GET /api/portfolio/{address}?period=
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	period, ok := parsePeriod(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_PERIOD",
			"period must be one of 1d, 7d, 30d, 90d, 1y, max", nil)
		return
	}

	portfolio, err := s.walletService.GetPortfolio(r.Context(), address, period)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// handleGetTransactions handles GET /api/transactions/{address}?page_size=&cursor=
func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	pageSize := defaultTransactionPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "INVALID_PAGE_SIZE",
				"page_size must be a positive integer", nil)
			return
		}
		pageSize = parsed
	}
	if pageSize > maxTransactionPageSize {
		pageSize = maxTransactionPageSize
	}

	cursor := r.URL.Query().Get("cursor")

	page, err := s.walletService.GetTransactions(r.Context(), address, pageSize, cursor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	links := map[string]string{}
	if page.Next != "" {
		links["next"] = page.Next
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":  page.Data,
		"links": links,
	})
}

// handleGetChart handles GET /api/chart/{address}?period=
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	period, ok := parsePeriod(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_PERIOD",
			"period must be one of 1d, 7d, 30d, 90d, 1y, max", nil)
		return
	}

	chart, err := s.walletService.GetChart(r.Context(), address, period)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data": chart.Points,
		"meta": map[string]interface{}{
			"period":       string(period),
			"currency":     "usd",
			"total_points": len(chart.Points),
			"begin_at":     chart.BeginAt,
			"end_at":       chart.EndAt,
		},
	})
}

// handleGetStats handles GET /api/stats/{address}
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	stats, err := s.statsService.GetWalletStats(r.Context(), address)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// parsePeriod reads the period query parameter, defaulting to 30d
func parsePeriod(r *http.Request) (types.ChartPeriod, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return types.Period30D, true
	}
	return types.ParseChartPeriod(raw)
}
