package web

// errors.go provides unified error response handling for the web layer.
//
// Validation failures are not HTTP errors: /api/validate always answers 200
// with a ValidationResult. Errors here are transport problems (bad form,
// busy server) and conversion failures. They are:
//   - Logged with full technical details (server-side)
//   - Returned to clients as user-friendly messages with action suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/fileprobe/internal/core"
	"github.com/JonMunkholm/fileprobe/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	// Only classified ingestion errors carry text meant for end users.
	if core.KindOf(err) == 0 {
		resp.Error = userMsg.Message
	}

	writeJSONStatus(w, statusCode, resp)
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	switch core.KindOf(err) {
	case core.KindUnrecognizedFormat:
		return http.StatusUnsupportedMediaType
	case core.KindEngineLoad, core.KindEmptyContent, core.KindCastFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a JSON error for failures that have no technical cause,
// such as malformed requests.
func writeError(w http.ResponseWriter, status int, message string) {
	slog.Debug("http error", "status", status, "message", message)

	writeJSONStatus(w, status, ErrorResponse{
		Error:   message,
		Message: message,
		Code:    http.StatusText(status),
	})
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
