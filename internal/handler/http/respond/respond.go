// Package respond writes JSON responses and keeps internal error details out of them.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stockpulse/internal/handler/http/requestid"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already sent
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes a client-facing message. msg must be safe to show.
func Error(w http.ResponseWriter, r *http.Request, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg, RequestID: requestid.FromContext(r.Context())})
}

// Internal logs err with secrets masked and answers with a generic message.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Default().ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", SanitizeError(err)))
	Error(w, r, http.StatusInternalServerError, "internal server error")
}
