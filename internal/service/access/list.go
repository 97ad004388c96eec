package access

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// List returns every record actor may see. Total is the raw store count
// before filtering.
func (s *Service[T, P]) List(ctx context.Context, actor domain.Actor) (domain.SearchResult[Record], error) {
	started := s.now()

	filter, err := s.authorize(ctx, actor, domain.ActivityRead)
	if err != nil {
		return domain.SearchResult[Record]{}, err
	}

	recs, err := s.store.FindAll(ctx)
	if err != nil || recs == nil {
		attrs := []any{slog.String("actor_id", actor.ID)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		s.log.WarnContext(ctx, "records not found", attrs...)
		return domain.SearchResult[Record]{}, &domain.RecordsNotFoundError{Resource: s.resource.Name(), Cause: err}
	}

	data := Apply(s.resource, filter, actor, recs)
	ended := s.now()

	s.emit(actor, domain.ActivityRead, nil, len(recs), started, ended)

	return domain.SearchResult[Record]{
		Data:   data,
		Length: len(data),
		Total:  len(recs),
	}, nil
}
