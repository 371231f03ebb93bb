package usecase

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// emitActivity publishes a best-effort activity event. A nil publisher is a no-op.
func emitActivity(ctx domain.Context, pub domain.ActivityPublisher, action domain.ActivityAction, subject string, details map[string]any) {
	if pub == nil {
		return
	}
	ev := domain.ActivityEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Subject:   subject,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	outcome := "published"
	if err := pub.Publish(ctx, ev); err != nil {
		outcome = "failed"
		obsctx.LoggerFromContext(ctx).Warn("activity publish failed",
			slog.String("action", string(action)),
			slog.String("subject", subject),
			slog.Any("error", err))
	}
	observability.ActivityEventsTotal.WithLabelValues(string(action), outcome).Inc()
}
