// Package segment exposes the access-controlled segment operations to
// transports. The acting identity is taken from the request context.
package segment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/policy"
	"github.com/heartmarshall/featureflags-backend/internal/service/access"
	"github.com/heartmarshall/featureflags-backend/pkg/ctxutil"
)

type resolver interface {
	Resolve(ctx context.Context, actor domain.Actor, isOwnerOrMember bool, action domain.ActivityType, resource string) (policy.Decision, error)
}

type emitter interface {
	Emit(eventType domain.ActivityType, event domain.ActivityEvent)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store is the persistence contract for segments.
type Store = access.Store[domain.Segment, domain.SegmentPatch]

// Service provides segment operations for the authenticated actor.
type Service struct {
	access *access.Service[domain.Segment, domain.SegmentPatch]
}

// NewService creates a new segment Service.
func NewService(
	log *slog.Logger,
	store Store,
	resolver resolver,
	emitter emitter,
	tx txManager,
	opts ...access.Option,
) *Service {
	return &Service{
		access: access.NewService(log, Resource{}, store, resolver, emitter, tx, opts...),
	}
}

// ListSegments returns the segments visible to the actor.
func (s *Service) ListSegments(ctx context.Context) (domain.SearchResult[access.Record], error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.SearchResult[access.Record]{}, domain.ErrUnauthorized
	}
	return s.access.List(ctx, actor)
}

// GetSegment returns one segment by ID.
func (s *Service) GetSegment(ctx context.Context, id uuid.UUID) (access.Record, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}
	return s.access.Get(ctx, actor, id)
}

// CreateSegment stores a new segment.
func (s *Service) CreateSegment(ctx context.Context, input domain.SegmentPatch) (access.Record, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.access.Create(ctx, actor, input)
}

// UpdateSegment merges patch into the segment with the given ID.
func (s *Service) UpdateSegment(ctx context.Context, id uuid.UUID, patch domain.SegmentPatch) (access.Record, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}
	return s.access.Update(ctx, actor, id, patch)
}

// RemoveSegment archives the segment with the given ID.
func (s *Service) RemoveSegment(ctx context.Context, id uuid.UUID) (bool, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return false, domain.ErrUnauthorized
	}
	if id == uuid.Nil {
		return false, domain.NewValidationError("id", "required")
	}
	return s.access.Delete(ctx, actor, id)
}
