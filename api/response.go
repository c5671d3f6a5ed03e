package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dailymcp/daily/internal/tools"
)

// writeJSON writes a JSON response with the given status code.
// Note: If encoding fails after WriteHeader is called, there's no way to
// notify the client since the status code is already sent. The error is
// logged for debugging but doesn't affect the response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// writeToolError maps a structured dispatch error onto an HTTP status and
// writes it in the tool error wire shape.
func writeToolError(w http.ResponseWriter, e *tools.Error) {
	writeJSON(w, toolErrorStatus(e.Kind), map[string]any{"error": e})
}

// toolErrorStatus maps error kinds to HTTP statuses. Circuit-open and
// provider-unavailable both map to 503: from the caller's side the tool is
// temporarily unusable either way, and the Retryable flag says try later.
func toolErrorStatus(kind tools.ErrorKind) int {
	switch kind {
	case tools.KindValidation:
		return http.StatusBadRequest
	case tools.KindNotFound:
		return http.StatusNotFound
	case tools.KindProviderUnavailable, tools.KindCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
