package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Get returns one record projected to the fields actor may read.
// A record hidden from actor by visibility is reported as not found.
func (s *Service[T, P]) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (Record, error) {
	started := s.now()

	filter, err := s.authorize(ctx, actor, domain.ActivityRead)
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "fetching record", slog.String("id", id.String()))

	rec, err := s.store.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.RecordNotFoundError{Resource: s.resource.Name(), ID: id.String()}
		}
		return nil, fmt.Errorf("get %s %s: %w", s.resource.Name(), id, err)
	}

	if !Visible(s.resource, filter, actor, rec) {
		return nil, &domain.RecordNotFoundError{Resource: s.resource.Name(), ID: id.String()}
	}

	out := s.resource.Project(rec, filter.Fields)
	ended := s.now()

	s.emit(actor, domain.ActivityRead, s.objectRef(id.String()), 0, started, ended)

	return out, nil
}
