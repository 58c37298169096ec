package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler receives an error from core.Service
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a status, message and code
//  4. Technical error is logged with the request ID for correlation
//  5. The client receives {"status":"error","message":...,"code":...}
//
// Batch delete keeps its own envelope, {"success":false,"message":...}.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
)

// ErrorResponse is the JSON body of every failed request except batch delete.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// BatchResponse is the JSON body of batch delete, on success and failure.
type BatchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted *int64 `json:"deleted,omitempty"`
}

// respondError maps err to a client response and logs the technical error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	logRequestError(r, err, msg)
	writeError(w, msg.Status, msg.Message, msg.Code)
}

// respondBatchError is respondError for the batch delete envelope.
func respondBatchError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	logRequestError(r, err, msg)
	writeJSON(w, msg.Status, BatchResponse{Success: false, Message: msg.Message})
}

func logRequestError(r *http.Request, err error, msg core.UserMessage) {
	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if msg.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"code", msg.Code,
		"error", err.Error(),
	)
}

// writeError writes an ErrorResponse with the given status.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Message: message, Code: code})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
