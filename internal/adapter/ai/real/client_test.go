package real

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func testConfig() config.Config {
	return config.Config{AppEnv: "test", LLMTemperature: 0.7, LLMTimeout: 5 * time.Second}
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
}

func TestChat_SendsOpenAICompatibleBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var body chatBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama", body.Model)
		assert.Equal(t, 0.7, body.Temperature)
		assert.Equal(t, 300, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		writeCompletion(w, `{"ok":true}`)
	}))
	defer ts.Close()

	c := New(ProviderGroq, ts.URL+"/", "k", "llama", testConfig())
	out, err := c.Chat(context.Background(), domain.ChatRequest{System: "sys", User: "hi", MaxTokens: 300})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "groq", c.Name())
}

func TestChat_NoSystemMessageAndNoAuthForOllama(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body chatBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Messages, 1)
		assert.Equal(t, 0.2, body.Temperature)
		writeCompletion(w, "plain text")
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.OllamaBaseURL = ts.URL
	cfg.OllamaModel = "llama3.2"
	out, err := NewOllama(cfg).Chat(context.Background(), domain.ChatRequest{User: "hi", Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestChat_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeCompletion(w, "third time")
	}))
	defer ts.Close()

	out, err := New(ProviderGemini, ts.URL, "k", "m", testConfig()).Chat(context.Background(), domain.ChatRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "third time", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestChat_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := New(ProviderGroq, ts.URL, "bad", "m", testConfig()).Chat(context.Background(), domain.ChatRequest{User: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChat_RateLimitClassified(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err := New(ProviderGroq, ts.URL, "k", "m", testConfig()).Chat(ctx, domain.ChatRequest{User: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamRateLimit) || errors.Is(err, domain.ErrUpstreamTimeout))
}

func TestChat_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	_, err := New(ProviderGroq, ts.URL, "k", "m", testConfig()).Chat(context.Background(), domain.ChatRequest{User: "x"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
