package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// PostgreSQL error codes mapped to domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// MapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
// Foreign key and check violations become a *domain.ValidationError on entity
// without the storage message; other errors keep it in the chain for logging.
func MapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	label := entity
	if id != "" {
		label = entity + " " + id
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", label, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", label, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", label, domain.ErrAlreadyExists, err)
		case codeForeignKeyViolation:
			return domain.NewValidationError(entity, "references an unknown record")
		case codeCheckViolation:
			return domain.NewValidationError(entity, "violates a constraint")
		}
	}

	return fmt.Errorf("%s: %w", label, err)
}
