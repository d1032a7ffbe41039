// internal/app/features/apierr/apierr.go

// Package apierr renders API error responses and logs server-side failures.
//
// Every error leaving the API has the same single-field JSON shape, so
// clients never have to guess between error formats:
//
//	{ "error": "not authorized" }
//
// Handlers use the package-level helpers for client errors and ErrorLogger
// for anything worth a log line. Internal error details never reach the
// response body; they go to the structured log only.
package apierr

import (
	"encoding/json"
	"net/http"

	"github.com/vendaops/contratohub/internal/app/system/autherrors"
	"go.uber.org/zap"
)

type response struct {
	Error string `json:"error"`
}

// Write renders a JSON error response with the given status.
func Write(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Error: msg})
}

// BadRequest renders a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	Write(w, http.StatusBadRequest, msg)
}

// Unauthorized renders a 401.
func Unauthorized(w http.ResponseWriter) {
	Write(w, http.StatusUnauthorized, "authentication required")
}

// Forbidden renders a 403. Every policy denial carries the same body,
// taken from the shared sentinel so handlers and middleware agree on it.
func Forbidden(w http.ResponseWriter) {
	Write(w, http.StatusForbidden, autherrors.ErrAuthorization.Error())
}

// NotFound renders a 404 with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	Write(w, http.StatusNotFound, msg)
}

// ErrorLogger logs server-side failures and renders the matching 500.
// Shared across features so error log lines carry consistent fields.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger on the app logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs the failure with request context and renders a 500
// carrying userMsg. The underlying error stays out of the response.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	Write(w, http.StatusInternalServerError, userMsg)
}
