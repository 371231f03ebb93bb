package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

type detailEnvelope struct {
	Detail failureDetail `json:"detail"`
}

type failureDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess merges "status":"success" into the JSON object rendered from v.
func writeSuccess(w http.ResponseWriter, v interface{}) {
	out := map[string]any{}
	if v != nil {
		b, err := json.Marshal(v)
		if err == nil {
			err = json.Unmarshal(b, &out)
		}
		if err != nil {
			writeError(w, nil, fmt.Errorf("%w: encode response: %v", domain.ErrInternal, err), nil)
			return
		}
	}
	out["status"] = "success"
	writeJSON(w, http.StatusOK, out)
}

// writeStateError reports a caller or session state error as {"error": msg}.
func writeStateError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure reports an unexpected failure of an agent endpoint. Caller
// errors still use the error envelope.
func writeFailure(w http.ResponseWriter, r *http.Request, summary string, err error) {
	if errors.Is(err, domain.ErrInvalidArgument) {
		writeError(w, r, err, nil)
		return
	}
	if r != nil {
		LoggerFrom(r).Error(summary, slog.Any("error", err))
	}
	writeJSON(w, http.StatusInternalServerError, detailEnvelope{Detail: failureDetail{
		Error:   summary,
		Message: err.Error(),
		Type:    errorType(err),
	}})
}

// errorType names the innermost wrapped error's dynamic type.
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNoActiveQuestion):
		code = http.StatusConflict
		codeStr = "CONFLICT"
	case errors.Is(err, domain.ErrRateLimited):
		code = http.StatusTooManyRequests
		codeStr = "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		code = http.StatusServiceUnavailable
		codeStr = "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		code = http.StatusServiceUnavailable
		codeStr = "UPSTREAM_RATE_LIMIT"
	case errors.Is(err, domain.ErrSchemaInvalid):
		code = http.StatusServiceUnavailable
		codeStr = "SCHEMA_INVALID"
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrNoProviders):
		code = http.StatusBadGateway
		codeStr = "UPSTREAM"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
