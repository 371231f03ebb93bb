package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func TestChat_JoinsTextBlocks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v1/messages")
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-haiku-latest", body["model"])
		assert.EqualValues(t, 1024, body["max_tokens"])
		assert.NotNil(t, body["system"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer ts.Close()

	cfg := config.Config{AnthropicAPIKey: "sk-ant-x", AnthropicModel: "claude-3-5-haiku-latest", LLMTemperature: 0.7, LLMTimeout: 5 * time.Second}
	c := New(cfg, option.WithBaseURL(ts.URL), option.WithMaxRetries(0))

	out, err := c.Chat(context.Background(), domain.ChatRequest{System: "be terse", User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	assert.Equal(t, "anthropic", c.Name())
}

func TestChat_ServerErrorWrapsUpstream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer ts.Close()

	cfg := config.Config{AnthropicAPIKey: "sk-ant-x", LLMTimeout: 5 * time.Second}
	c := New(cfg, option.WithBaseURL(ts.URL), option.WithMaxRetries(0))

	_, err := c.Chat(context.Background(), domain.ChatRequest{User: "hi"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
