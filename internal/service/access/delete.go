package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Delete archives the record. Records are never physically removed.
func (s *Service[T, P]) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (bool, error) {
	started := s.now()

	if _, err := s.authorize(ctx, actor, domain.ActivityDelete); err != nil {
		return false, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.store.SoftDelete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, &domain.RecordNotFoundError{Resource: s.resource.Name(), ID: id.String()}
		}
		s.log.ErrorContext(ctx, "unhandled delete failure",
			slog.String("actor_id", actor.ID),
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		return false, &domain.UnhandledError{Resource: s.resource.Name(), Op: "delete", ID: id.String(), Cause: err}
	}

	ended := s.now()

	s.emit(actor, domain.ActivityDelete, s.objectRef(id.String()), 0, started, ended)

	s.log.InfoContext(ctx, "record removed",
		slog.String("actor_id", actor.ID),
		slog.String("id", id.String()))

	return true, nil
}
