// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorHandler renders errors as JSON HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// errorBody is the wire shape of every error response. The error field
// keeps the shape the browser client already reads.
type errorBody struct {
	Error   string                 `json:"error"`
	Code    ErrorCode              `json:"code"`
	Details string                 `json:"details,omitempty"`
	Meta    map[string]interface{} `json:"metadata,omitempty"`
}

// WriteError normalizes err, logs it, and writes the JSON response.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := AsStandard(err)
	status := stdErr.Status()

	h.logError(r, stdErr, status)

	if stdErr.Code == ErrCodeRateLimited {
		if secs, ok := stdErr.Metadata["retryAfterSeconds"].(int); ok && secs > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}

	body := errorBody{
		Error: stdErr.Message,
		Code:  stdErr.Code,
		Meta:  stdErr.Metadata,
	}
	// internal details stay in the logs
	if status < http.StatusInternalServerError {
		body.Details = stdErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"status":        status,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if r != nil {
		fields["method"] = r.Method
		fields["path"] = r.URL.Path
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}
