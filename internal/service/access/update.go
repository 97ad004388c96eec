package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Update merges the permitted part of patch into the stored record. The
// existence check and the write happen in one transaction.
func (s *Service[T, P]) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch P) (Record, error) {
	started := s.now()

	filter, err := s.authorize(ctx, actor, domain.ActivityUpdate)
	if err != nil {
		return nil, err
	}

	patch = s.resource.ProjectInput(patch, filter.Fields)
	if err := s.resource.Validate(domain.ActivityUpdate, patch); err != nil {
		return nil, err
	}

	var merged T
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		merged, updateErr = s.store.MergeAndUpdate(txCtx, id, patch)
		return updateErr
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.RecordNotFoundError{Resource: s.resource.Name(), ID: id.String()}
		}
		s.log.ErrorContext(ctx, "unhandled update failure",
			slog.String("actor_id", actor.ID),
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		return nil, &domain.UnhandledError{Resource: s.resource.Name(), Op: "update", ID: id.String(), Cause: err}
	}

	out := s.resource.Project(merged, filter.Fields)
	ended := s.now()

	s.emit(actor, domain.ActivityUpdate, s.snapshot(merged), 0, started, ended)

	s.log.InfoContext(ctx, "record updated",
		slog.String("actor_id", actor.ID),
		slog.String("id", id.String()))

	return out, nil
}
