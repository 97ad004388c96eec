package nats

import (
	"context"
	"fmt"
)

type flusher interface {
	FlushWithContext(ctx context.Context) error
}

// Probe checks the connection by round-tripping a PING to the server.
type Probe struct {
	conn flusher
}

func NewProbe(conn flusher) *Probe {
	return &Probe{conn: conn}
}

func (p *Probe) Ping(ctx context.Context) error {
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats ping: %w", err)
	}
	return nil
}
