// Package activity persists activity events to the append-only activity_log
// table. Repo doubles as an audit subscriber.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/featureflags-backend/internal/adapter/postgres"
	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type activityRow struct {
	ID         uuid.UUID `db:"id"`
	ActorID    string    `db:"actor_id"`
	ActorType  string    `db:"actor_type"`
	Type       string    `db:"type"`
	Resource   string    `db:"resource"`
	ObjectID   *string   `db:"object_id"`
	Object     []byte    `db:"object"`
	Total      *int      `db:"total"`
	TookMs     int64     `db:"took_ms"`
	OccurredAt time.Time `db:"occurred_at"`
}

// objectJSON is the stored shape of domain.ActivityObject.
type objectJSON struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Repo provides activity log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new activity repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Name implements audit.Subscriber.
func (r *Repo) Name() string { return "activity_log" }

// Handle implements audit.Subscriber by appending the event.
func (r *Repo) Handle(ctx context.Context, event domain.ActivityEvent) error {
	return r.Append(ctx, event)
}

// Append inserts one activity event.
func (r *Repo) Append(ctx context.Context, event domain.ActivityEvent) error {
	var (
		objectID *string
		object   []byte
		total    *int
	)
	if event.Object != nil {
		id := event.Object.ID
		objectID = &id

		raw, err := json.Marshal(objectJSON{ID: event.Object.ID, Type: event.Object.Type, Data: event.Object.Data})
		if err != nil {
			return fmt.Errorf("activity marshal object: %w", err)
		}
		object = raw
	} else {
		n := event.Total
		total = &n
	}

	query, args, err := psql.Insert("activity_log").
		Columns("actor_id", "actor_type", "type", "resource", "object_id", "object", "total", "took_ms", "occurred_at").
		Values(event.Actor.ID, event.Actor.Type.String(), event.Type.String(), event.Resource,
			objectID, object, total, event.Took, event.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "activity", event.Resource)
	}
	return nil
}

// ListByObject returns the recorded events of one record, newest first.
func (r *Repo) ListByObject(ctx context.Context, resource, objectID string, limit int) ([]domain.ActivityEvent, error) {
	query, args, err := psql.Select("id", "actor_id", "actor_type", "type", "resource", "object_id", "object", "total", "took_ms", "occurred_at").
		From("activity_log").
		Where(squirrel.Eq{"resource": resource, "object_id": objectID}).
		OrderBy("occurred_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list activity query: %w", err)
	}

	var rows []activityRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list activity by object: %w", err)
	}

	events := make([]domain.ActivityEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func toDomain(row activityRow) (domain.ActivityEvent, error) {
	ev := domain.ActivityEvent{
		Actor:     domain.Actor{ID: row.ActorID, Type: domain.ActorType(row.ActorType)},
		Type:      domain.ActivityType(row.Type),
		Resource:  row.Resource,
		Timestamp: row.OccurredAt,
		Took:      row.TookMs,
	}
	if row.Total != nil {
		ev.Total = *row.Total
	}

	if len(row.Object) > 0 {
		var obj objectJSON
		if err := json.Unmarshal(row.Object, &obj); err != nil {
			return domain.ActivityEvent{}, fmt.Errorf("activity %s unmarshal object: %w", row.ID, err)
		}
		ev.Object = &domain.ActivityObject{ID: obj.ID, Type: obj.Type, Data: obj.Data}
	}
	return ev, nil
}
