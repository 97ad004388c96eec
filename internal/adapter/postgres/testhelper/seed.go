package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedFlag inserts a feature flag with a unique key.
func SeedFlag(t *testing.T, pool *pgxpool.Pool) domain.Flag {
	t.Helper()

	suffix := uniqueSuffix()
	flag := domain.Flag{
		ID:   uuid.New(),
		Key:  "flag-" + suffix,
		Name: "Flag " + suffix,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO flags (id, key, name) VALUES ($1, $2, $3)`,
		flag.ID, flag.Key, flag.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedFlag: %v", err)
	}

	return flag
}

// SeedSegment inserts a segment with a unique key and links the given flags.
func SeedSegment(t *testing.T, pool *pgxpool.Pool, archived bool, flags ...domain.Flag) domain.Segment {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	desc := "Seeded segment " + suffix
	seg := domain.Segment{
		ID:          uuid.New(),
		Key:         "segment-" + suffix,
		Name:        "Segment " + suffix,
		Description: &desc,
		Flags:       append([]domain.Flag{}, flags...),
		Archived:    archived,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO segments (id, key, name, description, archived, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		seg.ID, seg.Key, seg.Name, seg.Description, seg.Archived, seg.CreatedAt, seg.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSegment insert: %v", err)
	}

	for _, f := range flags {
		_, err := pool.Exec(ctx,
			`INSERT INTO segment_flags (segment_id, flag_id) VALUES ($1, $2)`,
			seg.ID, f.ID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedSegment link flag: %v", err)
		}
	}

	return seg
}
