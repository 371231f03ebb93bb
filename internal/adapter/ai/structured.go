package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// Validator is implemented by decoded payloads that can reject themselves.
type Validator interface {
	Validate() error
}

// Defaulter is implemented by payloads that pre-fill fields the model may omit.
// It runs on the zero value before decoding.
type Defaulter interface {
	ApplyDefaults()
}

var cleaner = NewResponseCleaner()

// DecodeJSON cleans raw model output and decodes it into T. Any failure wraps
// domain.ErrSchemaInvalid.
func DecodeJSON[T any](raw string) (T, error) {
	var out T
	cleaned, err := cleaner.CleanAndValidateJSON(raw)
	if err != nil {
		return out, fmt.Errorf("op=ai.DecodeJSON: %w: %w", domain.ErrSchemaInvalid, err)
	}
	if d, ok := any(&out).(Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("op=ai.DecodeJSON: %w: %w", domain.ErrSchemaInvalid, err)
	}
	if v, ok := any(&out).(Validator); ok {
		if err := v.Validate(); err != nil {
			var zero T
			return zero, fmt.Errorf("op=ai.DecodeJSON: %w: %w", domain.ErrSchemaInvalid, err)
		}
	}
	return out, nil
}

// CallJSON runs one chat call and decodes the reply into T. Transport,
// parse and validation failures are logged and replaced by fallback; the
// boolean reports whether the model's value was used.
func CallJSON[T any](ctx context.Context, llm domain.LLMClient, req domain.ChatRequest, fallback T) (T, bool) {
	lg := obsctx.LoggerFromContext(ctx)
	raw, err := llm.Chat(ctx, req)
	if err != nil {
		lg.Warn("llm call failed, using default",
			slog.String("operation", req.Operation),
			slog.Any("error", err))
		observability.StructuredDefaultsTotal.WithLabelValues(req.Operation).Inc()
		return fallback, false
	}
	out, err := DecodeJSON[T](raw)
	if err != nil {
		lg.Warn("llm reply rejected, using default",
			slog.String("operation", req.Operation),
			slog.String("snippet", snippet(raw, 200)),
			slog.Any("error", err))
		observability.StructuredDefaultsTotal.WithLabelValues(req.Operation).Inc()
		return fallback, false
	}
	return out, true
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// CleanJSONResponse strips fences and prose around the first JSON value in s.
func CleanJSONResponse(s string) string { return cleaner.CleanJSONResponse(s) }
