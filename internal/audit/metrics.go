package audit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// MetricsSubscriber records activity events as Prometheus metrics.
// It also exposes counters for emitter drops and subscriber failures.
type MetricsSubscriber struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	dropped  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetricsSubscriber registers the audit metrics on reg.
func NewMetricsSubscriber(reg prometheus.Registerer) *MetricsSubscriber {
	factory := promauto.With(reg)

	return &MetricsSubscriber{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featureflags",
			Subsystem: "activity",
			Name:      "events_total",
			Help:      "Activity events by resource and type.",
		}, []string{"resource", "type"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "featureflags",
			Subsystem: "activity",
			Name:      "operation_duration_seconds",
			Help:      "Duration of audited operations, authorization included.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"resource", "type"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featureflags",
			Subsystem: "activity",
			Name:      "events_dropped_total",
			Help:      "Events dropped because a subscriber queue was full.",
		}, []string{"subscriber"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featureflags",
			Subsystem: "activity",
			Name:      "subscriber_failures_total",
			Help:      "Subscriber deliveries that returned an error or panicked.",
		}, []string{"subscriber"}),
	}
}

func (s *MetricsSubscriber) Name() string { return "metrics" }

func (s *MetricsSubscriber) Handle(_ context.Context, event domain.ActivityEvent) error {
	labels := prometheus.Labels{"resource": event.Resource, "type": event.Type.String()}
	s.events.With(labels).Inc()
	s.duration.With(labels).Observe(float64(event.Took) / 1000)
	return nil
}

// Observe wires the drop and failure counters into e.
func (s *MetricsSubscriber) Observe(e *Emitter) {
	e.OnDrop(func(sub string) { s.dropped.WithLabelValues(sub).Inc() })
	e.OnFailure(func(sub string) { s.failures.WithLabelValues(sub).Inc() })
}
