package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// handleTradingSignals handles POST /api/trading-signals
func (s *Server) handleTradingSignals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WalletAddresses []string `json:"walletAddresses"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
		return
	}

	signals, err := s.signalService.GetSignals(r.Context(), req.WalletAddresses)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"signals": signals})
}

// handleTrending handles GET /api/trending?period=&limit=
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_PERIOD",
			"period must be one of 1d, 7d, 30d, 90d, 1y, max", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	entries, err := s.trendingService.GetTrending(r.Context(), period, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"trending": entries})
}

// providerWebhookRequest is the payload the provider posts when it observes
// new on-chain activity for a tracked wallet
type providerWebhookRequest struct {
	WalletAddress string          `json:"walletAddress"`
	Event         json.RawMessage `json:"event"`
}

// handleProviderWebhook handles POST /webhooks/provider
func (s *Server) handleProviderWebhook(w http.ResponseWriter, r *http.Request) {
	var req providerWebhookRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
		return
	}
	if req.WalletAddress == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "walletAddress is required", nil)
		return
	}

	if err := s.activityService.RecordDetected(r.Context(), req.WalletAddress, req.Event); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
