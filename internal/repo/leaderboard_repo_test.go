package repo

import (
	"context"
	"testing"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func TestUpsertScore_InsertThenUpdate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := UpsertScore(ctx, db, "lifetime_pulls", domain.GameGenshin, "901211014", 100); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := UpsertScore(ctx, db, "lifetime_pulls", domain.GameGenshin, "901211014", 250); err != nil {
		t.Fatalf("update: %v", err)
	}

	total, err := CountLeaderboard(ctx, db, "lifetime_pulls", domain.GameGenshin)
	if err != nil || total != 1 {
		t.Fatalf("expected single row after upsert, got %d err=%v", total, err)
	}

	var row domain.Leaderboard
	if err := db.First(&row, "uid = ?", "901211014").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if row.Value != 250 {
		t.Fatalf("value = %v, want 250", row.Value)
	}
}

func TestRerankLeaderboard_Descending(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	scores := map[string]float64{"u-a": 50, "u-b": 200, "u-c": 125}
	for uid, v := range scores {
		if err := UpsertScore(ctx, db, "lifetime_pulls", domain.GameGenshin, uid, v); err != nil {
			t.Fatalf("upsert %s: %v", uid, err)
		}
	}
	if err := RerankLeaderboard(ctx, db, "lifetime_pulls", domain.GameGenshin, RankDesc); err != nil {
		t.Fatalf("rerank: %v", err)
	}

	page, err := ListLeaderboardPage(ctx, db, "lifetime_pulls", domain.GameGenshin, 0, 10)
	if err != nil {
		t.Fatalf("ListLeaderboardPage: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(page))
	}
	wantOrder := []string{"u-b", "u-c", "u-a"}
	for i, uid := range wantOrder {
		if page[i].UID != uid || page[i].Rank != i+1 {
			t.Fatalf("page[%d] = {uid:%s rank:%d}, want {uid:%s rank:%d}", i, page[i].UID, page[i].Rank, uid, i+1)
		}
	}
}

func TestRerankLeaderboard_Ascending(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Lower-is-better metric: fewest pulls to a 5-star.
	for uid, v := range map[string]float64{"u-a": 78, "u-b": 12, "u-c": 45} {
		if err := UpsertScore(ctx, db, "fastest_five_star", domain.GameStarRail, uid, v); err != nil {
			t.Fatalf("upsert %s: %v", uid, err)
		}
	}
	if err := RerankLeaderboard(ctx, db, "fastest_five_star", domain.GameStarRail, RankAsc); err != nil {
		t.Fatalf("rerank: %v", err)
	}

	page, err := ListLeaderboardPage(ctx, db, "fastest_five_star", domain.GameStarRail, 0, 10)
	if err != nil {
		t.Fatalf("ListLeaderboardPage: %v", err)
	}
	if page[0].UID != "u-b" || page[0].Rank != 1 {
		t.Fatalf("ascending rank 1 = %+v, want u-b", page[0])
	}
	if page[2].UID != "u-a" || page[2].Rank != 3 {
		t.Fatalf("ascending rank 3 = %+v, want u-a", page[2])
	}
}

func TestRerankLeaderboard_PartitionIsolation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := UpsertScore(ctx, db, "lifetime_pulls", domain.GameGenshin, "u-a", 10); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := UpsertScore(ctx, db, "lifetime_pulls", domain.GameStarRail, "u-a", 999); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := RerankLeaderboard(ctx, db, "lifetime_pulls", domain.GameGenshin, RankDesc); err != nil {
		t.Fatalf("rerank: %v", err)
	}

	// The other game's partition keeps its default rank.
	var other domain.Leaderboard
	if err := db.First(&other, "game = ?", domain.GameStarRail).Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if other.Rank != 0 {
		t.Fatalf("rerank leaked across games: rank=%d", other.Rank)
	}
}

func TestListLeaderboardPage_Pagination(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i, uid := range []string{"u-1", "u-2", "u-3", "u-4"} {
		if err := UpsertScore(ctx, db, "five_star_count", domain.GameZZZ, uid, float64(10*(4-i))); err != nil {
			t.Fatalf("upsert %s: %v", uid, err)
		}
	}
	if err := RerankLeaderboard(ctx, db, "five_star_count", domain.GameZZZ, RankDesc); err != nil {
		t.Fatalf("rerank: %v", err)
	}

	second, err := ListLeaderboardPage(ctx, db, "five_star_count", domain.GameZZZ, 2, 2)
	if err != nil {
		t.Fatalf("ListLeaderboardPage: %v", err)
	}
	if len(second) != 2 || second[0].Rank != 3 || second[1].Rank != 4 {
		t.Fatalf("second page wrong: %+v", second)
	}
}
