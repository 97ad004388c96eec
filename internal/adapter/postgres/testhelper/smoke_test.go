package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	flag := SeedFlag(t, pool)
	seg := SeedSegment(t, pool, false, flag)

	var (
		key   string
		links int
	)
	err := pool.QueryRow(context.Background(),
		`SELECT s.key, (SELECT count(*) FROM segment_flags sf WHERE sf.segment_id = s.id)
		   FROM segments s WHERE s.id = $1`,
		seg.ID,
	).Scan(&key, &links)
	if err != nil {
		t.Fatalf("expected segment in DB, got error: %v", err)
	}

	if key != seg.Key {
		t.Fatalf("expected key %q, got %q", seg.Key, key)
	}
	if links != 1 {
		t.Fatalf("expected 1 linked flag, got %d", links)
	}
}
