// Package tokencount counts and trims prompt text by model tokens.
//
// Encodings come from tiktoken-go with the offline BPE loader, so counting
// never reaches the network. Models without a published encoding (Gemini,
// Llama, Claude) are approximated with cl100k_base.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenUsage represents token counts for an LLM API call.
type TokenUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// Counter provides thread-safe token counting for LLM models.
type Counter struct {
	mu            sync.RWMutex
	encodingCache map[string]*tiktoken.Tiktoken
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is a global token counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	name := normalizeModelName(model)

	c.mu.RLock()
	enc, ok := c.encodingCache[name]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding",
			slog.String("model", model),
			slog.Any("error", err))
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.encodingCache[name] = enc
	return enc, nil
}

// normalizeModelName maps provider model ids onto tiktoken model names.
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	switch {
	case strings.HasPrefix(model, "gpt-4o"):
		return "gpt-4o"
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		// gemini, llama, claude and unknown ids share the gpt-4 encoding as an approximation
		return "gpt-4"
	}
}

// CountTokens counts the number of tokens in text for model.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountChatTokens counts a system+user chat request including message framing.
func (c *Counter) CountChatTokens(systemPrompt, userPrompt, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	// 3 framing tokens per message, 1 per role, 3 priming the reply
	n := 3
	for _, m := range [][2]string{{"system", systemPrompt}, {"user", userPrompt}} {
		n += 3 + 1
		n += len(enc.Encode(m[0], nil, nil))
		n += len(enc.Encode(m[1], nil, nil))
	}
	return n, nil
}

// Truncate returns text cut to at most maxTokens tokens and whether it was cut.
// A non-positive budget leaves text untouched.
func (c *Counter) Truncate(text, model string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || text == "" {
		return text, false
	}
	enc, err := c.encoding(model)
	if err != nil {
		// roughly 4 chars per token
		limit := maxTokens * 4
		if len(text) <= limit {
			return text, false
		}
		return text[:limit], true
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	return enc.Decode(tokens[:maxTokens]), true
}

// CalculateUsage estimates full token usage for a chat completion.
func (c *Counter) CalculateUsage(systemPrompt, userPrompt, completion, model, provider string) TokenUsage {
	prompt, err := c.CountChatTokens(systemPrompt, userPrompt, model)
	if err != nil {
		prompt = (len(systemPrompt) + len(userPrompt)) / 4
	}
	out, err := c.CountTokens(completion, model)
	if err != nil {
		out = len(completion) / 4
	}
	return TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: out,
		TotalTokens:      prompt + out,
		Model:            model,
		Provider:         provider,
	}
}

// Truncate uses the default counter.
func Truncate(text, model string, maxTokens int) (string, bool) {
	return DefaultCounter.Truncate(text, model, maxTokens)
}

// CalculateUsage uses the default counter.
func CalculateUsage(systemPrompt, userPrompt, completion, model, provider string) TokenUsage {
	return DefaultCounter.CalculateUsage(systemPrompt, userPrompt, completion, model, provider)
}
