// Package segment implements the segment record store using PostgreSQL.
// Segments are never physically deleted: removal archives the row. Linked
// flags are always loaded with the segment.
package segment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/featureflags-backend/internal/adapter/postgres"
	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

const entity = "segment"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var segmentColumns = []string{
	"id", "key", "name", "description", "archived", "created_at", "updated_at",
}

type segmentRow struct {
	ID          uuid.UUID `db:"id"`
	Key         string    `db:"key"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Archived    bool      `db:"archived"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type flagRow struct {
	SegmentID uuid.UUID `db:"segment_id"`
	ID        uuid.UUID `db:"id"`
	Key       string    `db:"key"`
	Name      string    `db:"name"`
}

// Repo provides segment persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
	tx *postgres.TxManager
}

// New creates a new segment repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db, tx: postgres.NewTxManager(db)}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// FindAll returns every segment, archived ones included, ordered by creation time.
// The result is never nil.
func (r *Repo) FindAll(ctx context.Context) ([]domain.Segment, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := psql.Select(segmentColumns...).
		From("segments").
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find segments query: %w", err)
	}

	var rows []segmentRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "segments", "")
	}

	return r.withFlags(ctx, q, rows)
}

// FindOne returns the segment with the given id, archived or not.
// Returns domain.ErrNotFound when no such row exists.
func (r *Repo) FindOne(ctx context.Context, id uuid.UUID) (domain.Segment, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	row, err := r.selectOne(ctx, q, id, false)
	if err != nil {
		return domain.Segment{}, err
	}

	segs, err := r.withFlags(ctx, q, []segmentRow{row})
	if err != nil {
		return domain.Segment{}, err
	}
	return segs[0], nil
}

// Count returns the raw number of segment rows.
func (r *Repo) Count(ctx context.Context) (int, error) {
	query, args, err := psql.Select("count(*)").From("segments").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count segments query: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "segments", "")
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert creates a segment from the set fields of p and links its flags.
// Returns domain.ErrAlreadyExists when the key is taken and a
// *domain.ValidationError on "flags" when a referenced flag does not exist.
func (r *Repo) Insert(ctx context.Context, p domain.SegmentPatch) (domain.Segment, error) {
	var out domain.Segment

	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.db)

		cols := []string{"key", "name", "description"}
		vals := []any{deref(p.Key), deref(p.Name), nullable(p.Description)}
		if p.Archived != nil {
			cols = append(cols, "archived")
			vals = append(vals, *p.Archived)
		}

		query, args, err := psql.Insert("segments").
			Columns(cols...).
			Values(vals...).
			Suffix("RETURNING " + joinColumns()).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert segment query: %w", err)
		}

		var rows []segmentRow
		if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
			return postgres.MapError(err, entity, deref(p.Key))
		}
		if len(rows) == 0 {
			return fmt.Errorf("insert segment %s: no row returned", deref(p.Key))
		}

		if p.FlagIDs != nil {
			if err := linkFlags(ctx, q, rows[0].ID, *p.FlagIDs); err != nil {
				return err
			}
		}

		segs, err := r.withFlags(ctx, q, rows)
		if err != nil {
			return err
		}
		out = segs[0]
		return nil
	})
	if err != nil {
		return domain.Segment{}, err
	}
	return out, nil
}

// MergeAndUpdate locks the segment row, merges the set fields of p over it and
// persists the result in one transaction. Flag links are replaced when
// p.FlagIDs is set. Returns domain.ErrNotFound only when the row does not
// exist; an unknown flag is a *domain.ValidationError on "flags".
func (r *Repo) MergeAndUpdate(ctx context.Context, id uuid.UUID, p domain.SegmentPatch) (domain.Segment, error) {
	var out domain.Segment

	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.db)

		current, err := r.selectOne(ctx, q, id, true)
		if err != nil {
			return err
		}

		merged := p.Apply(toDomain(current, nil))

		query, args, err := psql.Update("segments").
			Set("key", merged.Key).
			Set("name", merged.Name).
			Set("description", merged.Description).
			Set("archived", merged.Archived).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING " + joinColumns()).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update segment query: %w", err)
		}

		var rows []segmentRow
		if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
			return postgres.MapError(err, entity, id.String())
		}
		if len(rows) == 0 {
			return postgres.MapError(pgx.ErrNoRows, entity, id.String())
		}

		if p.FlagIDs != nil {
			if err := unlinkFlags(ctx, q, id); err != nil {
				return err
			}
			if err := linkFlags(ctx, q, id, *p.FlagIDs); err != nil {
				return err
			}
		}

		segs, err := r.withFlags(ctx, q, rows)
		if err != nil {
			return err
		}
		out = segs[0]
		return nil
	})
	if err != nil {
		return domain.Segment{}, err
	}
	return out, nil
}

// SoftDelete archives the segment with a single conditional update.
// Returns domain.ErrNotFound when no row matched.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("segments").
		Set("archived", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive segment query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, entity, id.String())
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, entity, id.String())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) selectOne(ctx context.Context, q postgres.Querier, id uuid.UUID, lock bool) (segmentRow, error) {
	b := psql.Select(segmentColumns...).
		From("segments").
		Where(squirrel.Eq{"id": id})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return segmentRow{}, fmt.Errorf("build find segment query: %w", err)
	}

	var rows []segmentRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return segmentRow{}, postgres.MapError(err, entity, id.String())
	}
	if len(rows) == 0 {
		return segmentRow{}, fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// withFlags loads the flags of all rows with one query and converts the rows
// to domain segments.
func (r *Repo) withFlags(ctx context.Context, q postgres.Querier, rows []segmentRow) ([]domain.Segment, error) {
	out := make([]domain.Segment, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	query, args, err := psql.Select("sf.segment_id", "f.id", "f.key", "f.name").
		From("segment_flags sf").
		Join("flags f ON f.id = sf.flag_id").
		Where("sf.segment_id = ANY(?::uuid[])", ids).
		OrderBy("f.key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build segment flags query: %w", err)
	}

	var flags []flagRow
	if err := pgxscan.Select(ctx, q, &flags, query, args...); err != nil {
		return nil, postgres.MapError(err, "segment_flags", "")
	}

	bySegment := make(map[uuid.UUID][]domain.Flag, len(rows))
	for _, f := range flags {
		bySegment[f.SegmentID] = append(bySegment[f.SegmentID], domain.Flag{ID: f.ID, Key: f.Key, Name: f.Name})
	}

	for _, row := range rows {
		out = append(out, toDomain(row, bySegment[row.ID]))
	}
	return out, nil
}

func linkFlags(ctx context.Context, q postgres.Querier, segmentID uuid.UUID, flagIDs []uuid.UUID) error {
	if len(flagIDs) == 0 {
		return nil
	}

	b := psql.Insert("segment_flags").Columns("segment_id", "flag_id")
	for _, fid := range flagIDs {
		b = b.Values(segmentID, fid)
	}
	query, args, err := b.Suffix("ON CONFLICT (segment_id, flag_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build link flags query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, domain.SegmentFieldFlags, "")
	}
	return nil
}

func unlinkFlags(ctx context.Context, q postgres.Querier, segmentID uuid.UUID) error {
	query, args, err := psql.Delete("segment_flags").
		Where(squirrel.Eq{"segment_id": segmentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unlink flags query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "segment_flags", segmentID.String())
	}
	return nil
}

func toDomain(row segmentRow, flags []domain.Flag) domain.Segment {
	if flags == nil {
		flags = []domain.Flag{}
	}
	return domain.Segment{
		ID:          row.ID,
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Description,
		Flags:       flags,
		Archived:    row.Archived,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func joinColumns() string {
	return strings.Join(segmentColumns, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullable maps an unset or empty description to NULL.
func nullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
