// Package ai wraps chat-completion providers behind domain.LLMClient and turns
// free-form model output into typed values.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlock   = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	smartQuotes   = strings.NewReplacer("“", `"`, "”", `"`)
)

// ResponseCleaner extracts a JSON document from a chat completion.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

// CleanJSONResponse strips code fences and surrounding prose and repairs
// trailing commas. The result is not guaranteed to be valid JSON.
func (rc *ResponseCleaner) CleanJSONResponse(response string) string {
	response = rc.removeMarkdownBlocks(response)
	if rc.IsValidJSON(response) {
		return response
	}
	response = rc.extractJSON(response)
	if rc.IsValidJSON(response) {
		return response
	}
	return rc.fixCommonJSONIssues(response)
}

// removeMarkdownBlocks returns the body of the first fenced block, or the
// trimmed response when there is none.
func (rc *ResponseCleaner) removeMarkdownBlocks(response string) string {
	if m := fencedBlock.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	return strings.TrimSpace(response)
}

// extractJSON returns the first balanced object or array in response.
// Brackets inside string literals are ignored.
func (rc *ResponseCleaner) extractJSON(response string) string {
	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return response
	}
	open := response[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	// unterminated; hand back the tail so the caller sees the real error
	return response[start:]
}

func (rc *ResponseCleaner) fixCommonJSONIssues(response string) string {
	response = smartQuotes.Replace(response)
	return trailingComma.ReplaceAllString(response, "$1")
}

// IsValidJSON checks if a string is valid JSON.
func (rc *ResponseCleaner) IsValidJSON(response string) bool {
	return json.Valid([]byte(response))
}

// CleanAndValidateJSON cleans a response and fails when no valid JSON remains.
func (rc *ResponseCleaner) CleanAndValidateJSON(response string) (string, error) {
	cleaned := rc.CleanJSONResponse(response)
	if !rc.IsValidJSON(cleaned) {
		return "", &JSONValidationError{
			Original: response,
			Cleaned:  cleaned,
			Message:  "cleaned response is still not valid JSON",
		}
	}
	return cleaned, nil
}

// JSONValidationError represents a JSON validation error.
type JSONValidationError struct {
	Original string
	Cleaned  string
	Message  string
}

func (e *JSONValidationError) Error() string {
	return e.Message
}
