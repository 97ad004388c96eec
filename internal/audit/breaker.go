package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// BreakerConfig configures the circuit breaker placed in front of a subscriber
// that talks to an external system.
type BreakerConfig struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state counter reset period
	Timeout      time.Duration // open-state duration
	MinRequests  uint32
	FailureRatio float64
}

type breakerSubscriber struct {
	next Subscriber
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps sub so that repeated failures stop delivery attempts for a
// while instead of tying up the subscriber queue with timeouts.
func WithBreaker(log *slog.Logger, sub Subscriber, cfg BreakerConfig) Subscriber {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        sub.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("audit subscriber breaker state changed",
				slog.String("subscriber", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &breakerSubscriber{next: sub, cb: cb}
}

func (b *breakerSubscriber) Name() string { return b.next.Name() }

func (b *breakerSubscriber) Handle(ctx context.Context, event domain.ActivityEvent) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Handle(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", b.next.Name(), err)
	}
	return nil
}
