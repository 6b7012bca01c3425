package api

import (
	"encoding/json"
	"net/http"

	"github.com/wallet-pulse/internal/apperrors"
	"github.com/wallet-pulse/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// respondServiceError maps an error from the service layer onto the wire.
// Categorized errors carry their own status code and stable code; anything
// else becomes an opaque 500 so internals never leak to clients.
func respondServiceError(w http.ResponseWriter, err error) {
	appErr := apperrors.Categorize(err)
	if appErr == nil {
		return
	}

	if appErr.Category == apperrors.CategoryUnknown || appErr.Category == apperrors.CategoryDatabase {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
		return
	}

	svcErr := appErr.ToServiceError()
	respondError(w, appErr.StatusCode, svcErr.Code, svcErr.Message, svcErr.Details)
}
