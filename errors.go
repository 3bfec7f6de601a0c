package payloadkit

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"

	json "github.com/goccy/go-json"
)

// HTTPError represents an HTTP error with a status code and a stable
// machine-readable key. Message carries an optional human-readable
// explanation and Details an optional per-field breakdown; both appear
// in the rendered response body when set.
type HTTPError struct {
	Code    int                 // HTTP status code
	Key     string              // Stable error key (e.g., "bad_request")
	Message string              // Optional human-readable explanation
	Details map[string][]string // Optional per-field messages
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	if e.Message == "" {
		return e.Key
	}
	return e.Key + ": " + e.Message
}

// WithMessage returns a copy of e with the given message. The receiver
// is unchanged, so catalog errors stay pristine.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of e carrying the given per-field messages.
// The map is copied, so later mutation of details does not leak in.
func (e HTTPError) WithDetails(details map[string][]string) HTTPError {
	if len(details) == 0 {
		e.Details = nil
		return e
	}
	e.Details = make(map[string][]string, len(details))
	maps.Copy(e.Details, details)
	return e
}

// Errors the payload pipeline emits.
var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotAcceptable        = HTTPError{Code: http.StatusNotAcceptable, Key: "not_acceptable"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity  = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)

// ErrSchemaNotInitialized reports that a resource registered a typed nil
// schema, usually a forgotten constructor call. It renders as a plain 500
// so the registration mistake never leaks to clients.
var ErrSchemaNotInitialized = errors.New("payloadkit: schema is not initialized")

// NewHTTPError creates a custom HTTP error with the given status code and key.
//
// Example:
//
//	err := payloadkit.NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large")
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

// ErrorHandler renders err to the client. The pipeline calls it whenever
// a stage rejects a request or response serialization fails; replacing it
// lets applications control the error wire format.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorDetail is the error object rendered inside the response body.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// errorResponse is the error response envelope: {"error": {...}}.
type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorToDetail classifies err into an HTTP status and a renderable detail.
// Unclassified errors collapse to a generic 500 so internals never leak.
func errorToDetail(err error) (int, ErrorDetail) {
	status := http.StatusInternalServerError
	detail := ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: "An error occurred processing your request",
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		detail.Code = httpErr.Key
		detail.Message = httpErr.Message
		if detail.Message == "" {
			detail.Message = http.StatusText(httpErr.Code)
		}
		if len(httpErr.Details) > 0 {
			detail.Details = make(map[string][]string, len(httpErr.Details))
			maps.Copy(detail.Details, httpErr.Details)
		}
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		status = http.StatusUnprocessableEntity
		detail.Code = "validation_error"
		detail.Message = "Validation failed"
		if len(validationErr) > 0 {
			detail.Details = make(map[string][]string, len(validationErr))
			maps.Copy(detail.Details, validationErr)
		}
	}

	return status, detail
}

// RenderError writes err to w as a JSON error envelope. HTTPError values
// keep their status, key, message, and details; a bare ValidationError
// renders as 422 with its field map; anything else becomes a generic 500.
//
// RenderError is the default ErrorHandler for every pipeline stage.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorToDetail(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: detail})
}

// errorStatus returns the HTTP status err classifies to.
func errorStatus(err error) int {
	status, _ := errorToDetail(err)
	return status
}

// errorLogLevel maps HTTP status codes to log levels: client errors are
// expected traffic, server errors are not.
func errorLogLevel(status int) slog.Level {
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}
