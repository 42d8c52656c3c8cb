package repo

import (
	"context"
	"testing"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func TestRecordsStats_EmptyAccount(t *testing.T) {
	db := testDB(t)
	count, maxUpdated, err := RecordsStats(context.Background(), db, "missing")
	if err != nil {
		t.Fatalf("RecordsStats: %v", err)
	}
	if count != 0 || maxUpdated != nil {
		t.Fatalf("empty account stats = (%d, %v)", count, maxUpdated)
	}
}

func TestRecordsStats_CountAndLatest(t *testing.T) {
	db := testDB(t)
	seedAccount(t, db, "a1", "u1", "800000001", domain.GameStarRail)
	ctx := context.Background()

	if err := BulkCreateRecords(ctx, db, []domain.GachaRecord{
		record("a1", domain.GameStarRail, 1, 3, 11),
		record("a1", domain.GameStarRail, 2, 4, 11),
	}); err != nil {
		t.Fatalf("BulkCreateRecords: %v", err)
	}

	count, maxUpdated, err := RecordsStats(ctx, db, "a1")
	if err != nil {
		t.Fatalf("RecordsStats: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if maxUpdated == nil || maxUpdated.IsZero() {
		t.Fatalf("maxUpdated = %v, want a real timestamp", maxUpdated)
	}
}
