// Package audit delivers activity events to subscribers.
//
// The Emitter is constructed once with an explicit subscriber list and passed
// to every component that records activity. Delivery is asynchronous: each
// subscriber owns a goroutine and a bounded queue, so a slow or failing
// subscriber never blocks or fails the operation that emitted the event.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Subscriber consumes activity events.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, event domain.ActivityEvent) error
}

// Config tunes event delivery.
type Config struct {
	BufferSize     int
	HandlerTimeout time.Duration
}

const (
	defaultBufferSize     = 256
	defaultHandlerTimeout = 5 * time.Second
)

type worker struct {
	sub   Subscriber
	queue chan domain.ActivityEvent
}

// Emitter fans activity events out to a fixed set of subscribers.
type Emitter struct {
	log     *slog.Logger
	timeout time.Duration
	workers []*worker

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	dropped func(subscriber string)
	failed  func(subscriber string)
}

// NewEmitter creates an Emitter and starts one delivery goroutine per subscriber.
func NewEmitter(log *slog.Logger, cfg Config, subs ...Subscriber) *Emitter {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = defaultHandlerTimeout
	}

	e := &Emitter{
		log:     log.With("component", "audit_emitter"),
		timeout: cfg.HandlerTimeout,
		workers: make([]*worker, 0, len(subs)),
		dropped: func(string) {},
		failed:  func(string) {},
	}

	for _, s := range subs {
		w := &worker{sub: s, queue: make(chan domain.ActivityEvent, cfg.BufferSize)}
		e.workers = append(e.workers, w)
		e.wg.Add(1)
		go e.run(w)
	}

	return e
}

// OnDrop registers a hook invoked when an event is dropped for a subscriber.
// It must be called before the first Emit.
func (e *Emitter) OnDrop(fn func(subscriber string)) { e.dropped = fn }

// OnFailure registers a hook invoked when a subscriber returns an error or panics.
// It must be called before the first Emit.
func (e *Emitter) OnFailure(fn func(subscriber string)) { e.failed = fn }

// Emit queues the event for every subscriber without blocking.
// A subscriber whose queue is full misses the event.
func (e *Emitter) Emit(eventType domain.ActivityType, event domain.ActivityEvent) {
	event.Type = eventType

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.log.Warn("event emitted after close",
			slog.String("type", eventType.String()),
			slog.String("resource", event.Resource))
		return
	}

	for _, w := range e.workers {
		select {
		case w.queue <- event:
		default:
			e.dropped(w.sub.Name())
			e.log.Warn("subscriber queue full, event dropped",
				slog.String("subscriber", w.sub.Name()),
				slog.String("type", eventType.String()),
				slog.String("resource", event.Resource))
		}
	}
}

// Close stops accepting events and waits until queued events are delivered
// or ctx is done.
func (e *Emitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		for _, w := range e.workers {
			close(w.queue)
		}
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit: close: %w", ctx.Err())
	}
}

func (e *Emitter) run(w *worker) {
	defer e.wg.Done()
	for event := range w.queue {
		e.deliver(w.sub, event)
	}
}

func (e *Emitter) deliver(sub Subscriber, event domain.ActivityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			e.failed(sub.Name())
			e.log.Error("subscriber panicked",
				slog.String("subscriber", sub.Name()),
				slog.String("type", event.Type.String()),
				slog.Any("panic", r))
		}
	}()

	if err := sub.Handle(ctx, event); err != nil {
		e.failed(sub.Name())
		e.log.Error("subscriber failed",
			slog.String("subscriber", sub.Name()),
			slog.String("type", event.Type.String()),
			slog.String("resource", event.Resource),
			slog.String("error", err.Error()))
	}
}
