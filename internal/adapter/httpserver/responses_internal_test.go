package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		str  string
	}{
		{fmt.Errorf("op=x: %w", domain.ErrInvalidArgument), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrNoActiveQuestion, http.StatusConflict, "CONFLICT"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.ErrUpstreamTimeout, http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"},
		{fmt.Errorf("all providers failed: %w", domain.ErrUpstream), http.StatusBadGateway, "UPSTREAM"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, nil, tc.err, nil)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		assert.Contains(t, rec.Body.String(), `"code":"`+tc.str+`"`)
	}
}

func TestWriteSuccess_MergesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, struct {
		Text  string `json:"text"`
		Pages int    `json:"pages"`
	}{"hi", 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","text":"hi","pages":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeSuccess(rec, nil)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
}

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestWriteFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process-command", nil)
	writeFailure(rec, req, "Command processing failed", fmt.Errorf("op=usecase.ProcessCommand: %w", customErr{}))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":{"error":"Command processing failed","message":"op=usecase.ProcessCommand: custom","type":"httpserver.customErr"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeFailure(rec, req, "x", fmt.Errorf("%w: user_id required", domain.ErrInvalidArgument))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateID(t *testing.T) {
	assert.True(t, ValidateID("session_id", "sess-01_A.b@c:d").Valid)
	for id, code := range map[string]string{
		"":                        "REQUIRED",
		strings.Repeat("a", 101): "TOO_LONG",
		"has space":               "INVALID_FORMAT",
		"../etc":                  "INVALID_FORMAT",
	} {
		v := ValidateID("user_id", id)
		require.False(t, v.Valid, id)
		assert.Equal(t, code, v.Errors[0].Code, id)
		assert.Equal(t, "user_id", v.Errors[0].Field)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  a\x00bc \n"))
	assert.Len(t, SanitizeString(strings.Repeat("x", 2000)), 1000)
}
