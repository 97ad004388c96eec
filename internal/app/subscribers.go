package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	natsadapter "github.com/heartmarshall/featureflags-backend/internal/adapter/nats"
	"github.com/heartmarshall/featureflags-backend/internal/adapter/postgres/activity"
	redisadapter "github.com/heartmarshall/featureflags-backend/internal/adapter/redis"
	"github.com/heartmarshall/featureflags-backend/internal/audit"
	"github.com/heartmarshall/featureflags-backend/internal/config"
	"github.com/heartmarshall/featureflags-backend/internal/transport/rest"
)

// subscriberSet holds the activity subscribers and the connections they own.
type subscriberSet struct {
	list    []audit.Subscriber
	metrics *audit.MetricsSubscriber
	closers []func()
	// probes report the external sinks on /health.
	probes []rest.Probe
}

func (s *subscriberSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildSubscribers creates the subscribers enabled by cfg. External ones are
// wrapped in circuit breakers. reg is nil when metrics are disabled.
func buildSubscribers(
	ctx context.Context,
	cfg config.AuditConfig,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	reg *prometheus.Registry,
) (*subscriberSet, error) {
	set := &subscriberSet{}
	set.list = append(set.list, audit.NewLogSubscriber(logger))

	if reg != nil {
		set.metrics = audit.NewMetricsSubscriber(reg)
		set.list = append(set.list, set.metrics)
	}

	if cfg.Persist {
		set.list = append(set.list, activity.New(pool))
	}

	breaker := audit.BreakerConfig{
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	}

	if cfg.NATS.Enabled() {
		nc, err := natsadapter.Connect(cfg.NATS.URL, "featureflags-activity")
		if err != nil {
			set.close()
			return nil, err
		}
		set.closers = append(set.closers, func() { _ = nc.Drain() })
		set.probes = append(set.probes, rest.Probe{Name: "nats", Pinger: natsadapter.NewProbe(nc), Optional: true})
		set.list = append(set.list, audit.WithBreaker(logger, natsadapter.NewPublisher(nc, cfg.NATS.Subject), breaker))
		logger.Info("activity subscriber enabled", slog.String("subscriber", "nats"), slog.String("subject", cfg.NATS.Subject))
	}

	if cfg.Redis.Enabled() {
		client, err := redisadapter.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			set.close()
			return nil, err
		}
		set.closers = append(set.closers, func() { _ = client.Close() })
		set.probes = append(set.probes, rest.Probe{Name: "redis", Pinger: redisadapter.NewProbe(client), Optional: true})
		set.list = append(set.list, audit.WithBreaker(logger, redisadapter.NewStreamWriter(client, cfg.Redis.Stream, cfg.Redis.MaxLen), breaker))
		logger.Info("activity subscriber enabled", slog.String("subscriber", "redis"), slog.String("stream", cfg.Redis.Stream))
	}

	return set, nil
}
