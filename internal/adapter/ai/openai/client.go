// Package openai adapts the official OpenAI SDK to the provider interface.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// ProviderName is the fallback-chain name of this provider.
const ProviderName = "openai"

// Client calls the Chat Completions API with one fixed model.
type Client struct {
	client      sdk.Client
	model       string
	temperature float64
}

// New builds a client from configuration. Extra options are appended after
// the configured ones, so tests can override the base URL.
func New(cfg config.Config, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.LLMTimeout}),
		option.WithMaxRetries(2),
	}
	if cfg.OpenAIBaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &Client{
		client:      sdk.NewClient(append(base, opts...)...),
		model:       cfg.OpenAIModel,
		temperature: cfg.LLMTemperature,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Chat sends one system+user exchange and returns the first choice.
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, sdk.SystemMessage(req.System))
	}
	messages = append(messages, sdk.UserMessage(req.User))

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	params := sdk.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: sdk.Float(temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("op=openai.Chat: %w", classify(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("op=openai.Chat: %w: empty choices", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *sdk.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrUpstreamRateLimit, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
}
