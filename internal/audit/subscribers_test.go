package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

func TestLogSubscriber_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewLogSubscriber(slog.New(slog.NewJSONHandler(&buf, nil)))

	event := testEvent()
	event.Type = domain.ActivityDelete
	require.NoError(t, s.Handle(context.Background(), event))

	out := buf.String()
	assert.Contains(t, out, `"type":"DELETE"`)
	assert.Contains(t, out, `"object_id":"s1"`)
	assert.Contains(t, out, `"actor_type":"Person"`)
}

func TestLogSubscriber_ListEventLogsTotal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewLogSubscriber(slog.New(slog.NewJSONHandler(&buf, nil)))

	event := testEvent()
	event.Type = domain.ActivityRead
	event.Object = nil
	event.Total = 3
	require.NoError(t, s.Handle(context.Background(), event))

	assert.Contains(t, buf.String(), `"total":3`)
	assert.NotContains(t, buf.String(), "object_id")
}

func TestMetricsSubscriber(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetricsSubscriber(reg)

	flaky := &recordingSubscriber{name: "flaky", err: errors.New("down")}
	e := NewEmitter(discardLogger(), Config{}, m, flaky)
	m.Observe(e)

	e.Emit(domain.ActivityRead, testEvent())
	e.Emit(domain.ActivityRead, testEvent())
	e.Emit(domain.ActivityCreate, testEvent())
	require.NoError(t, e.Close(context.Background()))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.events.WithLabelValues(domain.ResourceSegment, "READ")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.events.WithLabelValues(domain.ResourceSegment, "CREATE")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.failures.WithLabelValues("flaky")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestWithBreaker_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	down := &recordingSubscriber{name: "nats", err: errors.New("connection refused")}
	s := WithBreaker(discardLogger(), down, BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	})
	assert.Equal(t, "nats", s.Name())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := s.Handle(ctx, testEvent())
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	err := s.Handle(ctx, testEvent())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, down.Events(), 2, "open breaker must not call the subscriber")
}

func TestWithBreaker_PassesSuccess(t *testing.T) {
	t.Parallel()

	ok := &recordingSubscriber{name: "redis"}
	s := WithBreaker(discardLogger(), ok, BreakerConfig{MinRequests: 1, FailureRatio: 1})

	require.NoError(t, s.Handle(context.Background(), testEvent()))
	assert.Len(t, ok.Events(), 1)
}
