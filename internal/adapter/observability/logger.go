package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
)

const redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never reach the log sink.
var sensitiveKeys = map[string]struct{}{
	"api_key":       {},
	"authorization": {},
	"password":      {},
	"smtp_pass":     {},
	"token":         {},
}

// SetupLogger configures a JSON slog logger on stdout.
func SetupLogger(cfg config.Config) *slog.Logger {
	return NewLogger(os.Stdout, cfg)
}

// NewLogger builds the service logger on w. Debug is enabled in dev only.
func NewLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSensitive,
	})
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}

func redactSensitive(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}
