// Package redis appends activity events to a Redis stream.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/featureflags-backend/internal/audit"
	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// StreamWriter is an audit.Subscriber that appends every event to a Redis
// stream trimmed to roughly MaxLen entries.
type StreamWriter struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewStreamWriter creates a StreamWriter. maxLen <= 0 disables trimming.
func NewStreamWriter(client redis.Cmdable, stream string, maxLen int64) *StreamWriter {
	return &StreamWriter{client: client, stream: stream, maxLen: maxLen}
}

// NewClient creates a client for addr and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (w *StreamWriter) Name() string { return "redis" }

// Handle implements audit.Subscriber.
func (w *StreamWriter) Handle(ctx context.Context, event domain.ActivityEvent) error {
	data, err := audit.Encode(event)
	if err != nil {
		return err
	}

	values := map[string]any{
		"type":     event.Type.String(),
		"resource": event.Resource,
		"actor_id": event.Actor.ID,
		"payload":  string(data),
	}
	if event.Object != nil {
		values["object_id"] = event.Object.ID
	}

	args := &redis.XAddArgs{
		Stream: w.stream,
		Values: values,
	}
	if w.maxLen > 0 {
		args.MaxLen = w.maxLen
		args.Approx = true
	}

	if err := w.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", w.stream, err)
	}
	return nil
}
