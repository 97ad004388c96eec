package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error to its HTTP reply. Unexpected
// errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fields := make([]fieldError, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			fields = append(fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: verr.Error(),
			Fields:  fields,
		})
		return
	}

	var unhandled *domain.UnhandledError

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", forbiddenMessage(err))
	case errors.As(err, &unhandled):
		log.ErrorContext(r.Context(), "unhandled persistence failure",
			slog.String("op", unhandled.Op),
			slog.String("id", unhandled.ID),
			slog.Any("cause", unhandled.Cause))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", notFoundMessage(err))
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "conflict", conflictMessage(err))
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// The messages below are built from the typed errors only; wrapped storage
// text never reaches the client.

func forbiddenMessage(err error) string {
	var e *domain.UserNotAuthorizedError
	if errors.As(err, &e) {
		return e.Error()
	}
	return "forbidden"
}

func notFoundMessage(err error) string {
	var one *domain.RecordNotFoundError
	if errors.As(err, &one) {
		return one.Error()
	}
	var many *domain.RecordsNotFoundError
	if errors.As(err, &many) {
		return many.Error()
	}
	return "record not found"
}

func conflictMessage(err error) string {
	var e *domain.DuplicateRecordError
	if errors.As(err, &e) {
		return e.Error()
	}
	return "record already exists"
}
