package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Probe checks the server with PING.
type Probe struct {
	client redis.Cmdable
}

func NewProbe(client redis.Cmdable) *Probe {
	return &Probe{client: client}
}

func (p *Probe) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
