// Package real implements chat providers that speak the OpenAI-compatible
// /chat/completions protocol over plain HTTP (Gemini, Groq, Ollama).
package real

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

const defaultMaxTokens = 1024

// Client is one OpenAI-compatible chat endpoint with a fixed model.
type Client struct {
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	hc          *http.Client
	newBackoff  func() backoff.BackOff
}

// New constructs a client. An empty apiKey sends no Authorization header.
func New(name, baseURL, apiKey, model string, cfg config.Config) *Client {
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.LLMTemperature,
		hc: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return fmt.Sprintf("LLM %s %s", name, r.URL.Host)
				}),
			),
		},
	}
	c.newBackoff = func() backoff.BackOff { return backoffFromConfig(cfg) }
	return c
}

// NewGemini targets Google's OpenAI-compatible endpoint.
func NewGemini(cfg config.Config) *Client {
	return New(ProviderGemini, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg)
}

// NewGroq targets Groq.
func NewGroq(cfg config.Config) *Client {
	return New(ProviderGroq, cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg)
}

// NewOllama targets a local Ollama server through its /v1 compatibility layer.
func NewOllama(cfg config.Config) *Client {
	base := strings.TrimRight(cfg.OllamaBaseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return New(ProviderOllama, base, "", cfg.OllamaModel, cfg)
}

func backoffFromConfig(cfg config.Config) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// Name returns the provider name.
func (c *Client) Name() string { return c.name }

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatBody struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat posts one completion request. 429 and 5xx responses are retried with
// exponential backoff; other 4xx responses fail immediately.
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("provider", c.name), slog.String("model", c.model))

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})
	b, err := json.Marshal(chatBody{Model: c.model, Temperature: temperature, MaxTokens: maxTokens, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("op=real.Chat: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	var out chatResponse
	var lastStatus int
	op := func() error {
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.apiKey != "" {
			r.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		r.Header.Set("Content-Type", "application/json")
		if rid := obsctx.RequestIDFromContext(ctx); rid != "" {
			r.Header.Set("X-Request-Id", rid)
		}
		resp, err := c.hc.Do(r)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return err
		}
		lastStatus = resp.StatusCode

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lg.Warn("ai provider rate limited", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("rate limited: 429")
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			lg.Warn("ai provider 4xx", slog.Int("status", resp.StatusCode), slog.String("body", truncate(string(bodyBytes), 512)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			lg.Error("ai provider non-2xx", slog.Int("status", resp.StatusCode), slog.String("body", truncate(string(bodyBytes), 512)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode chat response: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.newBackoff(), ctx)); err != nil {
		return "", fmt.Errorf("op=real.Chat provider=%s: %w", c.name, classify(err, lastStatus))
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("op=real.Chat provider=%s: %w: empty choices", c.name, domain.ErrUpstream)
	}
	content := out.Choices[0].Message.Content
	usage := tokencount.CalculateUsage(req.System, req.User, content, c.model, c.name)
	lg.Debug("ai chat completed",
		slog.String("operation", req.Operation),
		slog.Int("prompt_tokens", usage.PromptTokens),
		slog.Int("completion_tokens", usage.CompletionTokens))
	return content, nil
}

func classify(err error, status int) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrUpstreamRateLimit, err)
	default:
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
