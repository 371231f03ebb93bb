package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	t.Parallel()
	counter := NewCounter()

	tests := []struct {
		name     string
		text     string
		model    string
		minCount int
		maxCount int
	}{
		{name: "gpt-4o", text: "Hello, world!", model: "gpt-4o-mini", minCount: 3, maxCount: 5},
		{name: "gpt-3.5", text: "The quick brown fox jumps over the lazy dog.", model: "gpt-3.5-turbo", minCount: 8, maxCount: 12},
		{name: "groq llama", text: "Testing token counting", model: "llama-3.3-70b-versatile", minCount: 3, maxCount: 6},
		{name: "gemini", text: "Hello, world!", model: "gemini-2.0-flash", minCount: 3, maxCount: 5},
		{name: "empty", text: "", model: "gpt-4", minCount: 0, maxCount: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := counter.CountTokens(tt.text, tt.model)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, tt.minCount)
			assert.LessOrEqual(t, n, tt.maxCount)
		})
	}
}

func TestNormalizeModelName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "gpt-4o", normalizeModelName("gpt-4o-mini"))
	assert.Equal(t, "gpt-3.5-turbo", normalizeModelName("GPT-3.5-turbo-0125"))
	assert.Equal(t, "gpt-4", normalizeModelName("meta-llama/llama-3.1-8b-instruct"))
	assert.Equal(t, "gpt-4", normalizeModelName("claude-3-5-haiku-latest"))
}

func TestCountChatTokens_IncludesFraming(t *testing.T) {
	t.Parallel()
	c := NewCounter()
	sys, err := c.CountTokens("You are helpful.", "gpt-4")
	require.NoError(t, err)
	usr, err := c.CountTokens("Hi", "gpt-4")
	require.NoError(t, err)

	n, err := c.CountChatTokens("You are helpful.", "Hi", "gpt-4")
	require.NoError(t, err)
	assert.Greater(t, n, sys+usr)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	c := NewCounter()
	long := strings.Repeat("golang redis kafka postgres ", 200)

	out, cut := c.Truncate(long, "gpt-4", 50)
	assert.True(t, cut)
	n, err := c.CountTokens(out, "gpt-4")
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 50)
	assert.True(t, strings.HasPrefix(long, out))

	short, cut := c.Truncate("tiny", "gpt-4", 50)
	assert.False(t, cut)
	assert.Equal(t, "tiny", short)

	same, cut := c.Truncate(long, "gpt-4", 0)
	assert.False(t, cut)
	assert.Equal(t, long, same)
}

func TestCalculateUsage(t *testing.T) {
	t.Parallel()
	u := CalculateUsage("system", "user prompt", "the reply", "gemini-2.0-flash", "gemini")
	assert.Equal(t, u.PromptTokens+u.CompletionTokens, u.TotalTokens)
	assert.Greater(t, u.CompletionTokens, 0)
	assert.Equal(t, "gemini", u.Provider)
	assert.Equal(t, "gemini-2.0-flash", u.Model)
}

func TestEncodingCache(t *testing.T) {
	t.Parallel()
	c := NewCounter()
	_, err := c.CountTokens("a", "gpt-4")
	require.NoError(t, err)
	_, err = c.CountTokens("b", "llama3.2")
	require.NoError(t, err)
	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Len(t, c.encodingCache, 1)
}
