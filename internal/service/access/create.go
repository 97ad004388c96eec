package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Create stores a new record built from the permitted part of input.
func (s *Service[T, P]) Create(ctx context.Context, actor domain.Actor, input P) (Record, error) {
	started := s.now()

	filter, err := s.authorize(ctx, actor, domain.ActivityCreate)
	if err != nil {
		return nil, err
	}

	input = s.resource.ProjectInput(input, filter.Fields)
	if err := s.resource.Validate(domain.ActivityCreate, input); err != nil {
		return nil, err
	}

	var saved T
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var insertErr error
		saved, insertErr = s.store.Insert(txCtx, input)
		return insertErr
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			// The storage message names constraints; keep it in logs only.
			s.log.WarnContext(ctx, "duplicate record",
				slog.String("actor_id", actor.ID),
				slog.String("error", err.Error()))
			return nil, &domain.DuplicateRecordError{Resource: s.resource.Name()}
		}
		return nil, fmt.Errorf("create %s: %w", s.resource.Name(), err)
	}

	out := s.resource.Project(saved, filter.Fields)
	ended := s.now()

	s.emit(actor, domain.ActivityCreate, s.snapshot(saved), 0, started, ended)

	s.log.InfoContext(ctx, "record saved",
		slog.String("actor_id", actor.ID),
		slog.String("id", s.resource.RecordID(saved)))

	return out, nil
}
