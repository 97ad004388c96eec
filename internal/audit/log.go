package audit

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// LogSubscriber writes every activity event to a structured logger.
type LogSubscriber struct {
	log *slog.Logger
}

func NewLogSubscriber(log *slog.Logger) *LogSubscriber {
	return &LogSubscriber{log: log.With("subscriber", "log")}
}

func (s *LogSubscriber) Name() string { return "log" }

func (s *LogSubscriber) Handle(ctx context.Context, event domain.ActivityEvent) error {
	attrs := []slog.Attr{
		slog.String("type", event.Type.String()),
		slog.String("resource", event.Resource),
		slog.String("actor_id", event.Actor.ID),
		slog.String("actor_type", event.Actor.Type.String()),
		slog.Time("timestamp", event.Timestamp),
		slog.Int64("took_ms", event.Took),
	}
	if event.Object != nil {
		attrs = append(attrs, slog.String("object_id", event.Object.ID))
	} else {
		attrs = append(attrs, slog.Int("total", event.Total))
	}

	s.log.LogAttrs(ctx, slog.LevelInfo, "activity", attrs...)
	return nil
}
