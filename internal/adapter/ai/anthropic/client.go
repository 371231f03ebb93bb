// Package anthropic adapts the Anthropic Messages SDK to the provider interface.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// ProviderName is the fallback-chain name of this provider.
const ProviderName = "anthropic"

// Messages requires max_tokens; used when the caller leaves it unset.
const defaultMaxTokens = 1024

// Client calls the Messages API with one fixed model.
type Client struct {
	client      sdk.Client
	model       sdk.Model
	temperature float64
}

// New builds a client from configuration. Extra options are appended after
// the configured ones.
func New(cfg config.Config, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.LLMTimeout}),
		option.WithMaxRetries(2),
	}
	model := sdk.Model(cfg.AnthropicModel)
	if model == "" {
		model = sdk.ModelClaude3_5Sonnet20241022
	}
	return &Client{
		client:      sdk.NewClient(append(base, opts...)...),
		model:       model,
		temperature: cfg.LLMTemperature,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Chat sends the user prompt with the system prompt as a system block and
// concatenates the text blocks of the reply.
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	params := sdk.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(temperature),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.User))},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("op=anthropic.Chat: %w", classify(err))
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("op=anthropic.Chat: %w: no text content", domain.ErrUpstream)
	}
	return sb.String(), nil
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
