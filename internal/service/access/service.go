// Package access implements the permission-filtered CRUD protocol shared by
// all resources: authorize, execute against the store, filter the result,
// record one activity event, return.
package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/policy"
)

// Record is an entity projected to the attributes an actor may see.
type Record map[string]any

// Resource describes how the protocol handles one entity type T and its
// create/update input P.
type Resource[T, P any] interface {
	// Name is the resource name used by the policy and in activity events.
	Name() string
	RecordID(rec T) string
	Archived(rec T) bool
	// OwnerID returns the id of the actor owning rec, or "" when the
	// resource has no ownership.
	OwnerID(rec T) string
	IsOwnerOrMember(actor domain.Actor) bool
	// Project returns the attributes of rec allowed by fields.
	Project(rec T, fields policy.FieldSet) Record
	// ProjectInput drops the input attributes not allowed by fields.
	ProjectInput(input P, fields policy.FieldSet) P
	Validate(action domain.ActivityType, input P) error
}

// Store persists records of one resource.
type Store[T, P any] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindOne(ctx context.Context, id uuid.UUID) (T, error)
	Insert(ctx context.Context, input P) (T, error)
	MergeAndUpdate(ctx context.Context, id uuid.UUID, patch P) (T, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type resolver interface {
	Resolve(ctx context.Context, actor domain.Actor, isOwnerOrMember bool, action domain.ActivityType, resource string) (policy.Decision, error)
}

type emitter interface {
	Emit(eventType domain.ActivityType, event domain.ActivityEvent)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service runs the access protocol for one resource.
type Service[T, P any] struct {
	resource Resource[T, P]
	store    Store[T, P]
	resolver resolver
	emitter  emitter
	tx       txManager
	log      *slog.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the clock used to time operations.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService creates an access Service for resource.
func NewService[T, P any](
	log *slog.Logger,
	resource Resource[T, P],
	store Store[T, P],
	resolver resolver,
	emitter emitter,
	tx txManager,
	opts ...Option,
) *Service[T, P] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service[T, P]{
		resource: resource,
		store:    store,
		resolver: resolver,
		emitter:  emitter,
		tx:       tx,
		log:      log.With("service", resource.Name()),
		now:      o.now,
	}
}

// authorize resolves the decision for actor and action. Resolver errors are
// returned unchanged; a denial becomes *domain.UserNotAuthorizedError.
func (s *Service[T, P]) authorize(ctx context.Context, actor domain.Actor, action domain.ActivityType) (policy.Filter, error) {
	decision, err := s.resolver.Resolve(ctx, actor, s.resource.IsOwnerOrMember(actor), action, s.resource.Name())
	if err != nil {
		s.log.ErrorContext(ctx, "permission resolution failed",
			slog.String("action", action.String()),
			slog.String("error", err.Error()))
		return policy.Filter{}, err
	}

	if !decision.Granted {
		return policy.Filter{}, &domain.UserNotAuthorizedError{
			ActorID:  actor.ID,
			Action:   action,
			Resource: s.resource.Name(),
		}
	}
	return decision.Filter, nil
}

// emit records one activity event. started and ended bracket authorization
// and execution.
func (s *Service[T, P]) emit(actor domain.Actor, action domain.ActivityType, object *domain.ActivityObject, total int, started, ended time.Time) {
	s.emitter.Emit(action, domain.ActivityEvent{
		Actor:     domain.Actor{ID: actor.ID, Type: domain.ActorTypePerson, Role: actor.Role},
		Type:      action,
		Resource:  s.resource.Name(),
		Object:    object,
		Timestamp: ended,
		Took:      ended.Sub(started).Milliseconds(),
		Total:     total,
	})
}

func (s *Service[T, P]) objectRef(id string) *domain.ActivityObject {
	return &domain.ActivityObject{ID: id, Type: s.resource.Name()}
}

// snapshot returns an object carrying the full, unfiltered record.
func (s *Service[T, P]) snapshot(rec T) *domain.ActivityObject {
	return &domain.ActivityObject{
		ID:   s.resource.RecordID(rec),
		Type: s.resource.Name(),
		Data: s.resource.Project(rec, policy.AllFields()),
	}
}
