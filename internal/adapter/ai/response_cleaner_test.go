package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCleaner_CleanJSONResponse(t *testing.T) {
	t.Parallel()

	cleaner := NewResponseCleaner()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean_json",
			input:    `{"status": "success"}`,
			expected: `{"status": "success"}`,
		},
		{
			name:     "markdown_wrapped_json",
			input:    "```json\n{\"status\": \"success\"}\n```",
			expected: `{"status": "success"}`,
		},
		{
			name:     "fence_after_prose",
			input:    "Sure! Here you go:\n```\n[{\"question\": \"Why Go?\"}]\n```\nGood luck.",
			expected: `[{"question": "Why Go?"}]`,
		},
		{
			name:     "mixed_content_with_json",
			input:    "Here is the response: {\"status\": \"success\", \"data\": \"test\"} hope it helps",
			expected: `{"status": "success", "data": "test"}`,
		},
		{
			name:     "array_with_prose",
			input:    "Questions:\n[{\"question\": \"a\"}, {\"question\": \"b\"}]",
			expected: `[{"question": "a"}, {"question": "b"}]`,
		},
		{
			name:     "braces_inside_strings",
			input:    `note {"feedback": "use {braces} wisely", "x": 1} end`,
			expected: `{"feedback": "use {braces} wisely", "x": 1}`,
		},
		{
			name:     "apostrophes_preserved",
			input:    `{"question": "Describe a project you've led."}`,
			expected: `{"question": "Describe a project you've led."}`,
		},
		{
			name:     "json_with_trailing_comma",
			input:    `{"status": "success", "data": "test",}`,
			expected: `{"status": "success", "data": "test"}`,
		},
		{
			name:     "smart_quotes",
			input:    "{“status”: “ok”}",
			expected: `{"status": "ok"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, cleaner.CleanJSONResponse(tt.input))
		})
	}
}

func TestResponseCleaner_CleanAndValidateJSON(t *testing.T) {
	cleaner := NewResponseCleaner()

	out, err := cleaner.CleanAndValidateJSON("```json\n{\"ok\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)

	_, err = cleaner.CleanAndValidateJSON("I cannot help with that.")
	require.Error(t, err)
	var jerr *JSONValidationError
	require.True(t, errors.As(err, &jerr))
	assert.Equal(t, "I cannot help with that.", jerr.Original)

	_, err = cleaner.CleanAndValidateJSON(`{"unterminated": "value`)
	assert.Error(t, err)
}
