// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// leaderboard table, including the windowed full-partition rerank that
// mirrors the gacha history renumbering design.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// RankOrder selects how leaderboard values are ranked.
type RankOrder string

const (
	// RankAsc ranks the smallest value first (lower-is-better metrics,
	// e.g. fewest pulls to a 5-star).
	RankAsc RankOrder = "asc"
	// RankDesc ranks the largest value first (higher-is-better metrics).
	RankDesc RankOrder = "desc"
)

// UpsertScore inserts or updates the value for (lbType, game, uid). Rank is
// left untouched here; callers rerank the partition afterwards.
func UpsertScore(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, uid string, value float64) error {
	row := &domain.Leaderboard{
		Type:      lbType,
		Game:      game,
		UID:       uid,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}, {Name: "game"}, {Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row).Error
}

// RerankLeaderboard assigns ROW_NUMBER() ranks to every row of the
// (lbType, game) partition, ordered by value in the given direction. It is a
// deliberate full-partition recompute, not an incremental patch: rerunning it
// over the final row set is always correct regardless of update order.
func RerankLeaderboard(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, order RankOrder) error {
	dir := "ASC"
	if order == RankDesc {
		dir = "DESC"
	}
	return db.WithContext(ctx).Exec(`
		UPDATE leaderboards SET rank = ranked.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY value `+dir+`) AS rn
			FROM leaderboards
			WHERE type = ? AND game = ?
		) AS ranked
		WHERE leaderboards.id = ranked.id`, lbType, game).Error
}

// CountLeaderboard returns the number of entries in a (lbType, game) partition.
func CountLeaderboard(ctx context.Context, db *gorm.DB, lbType string, game domain.Game) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Leaderboard{}).
		Where("type = ? AND game = ?", lbType, game).
		Count(&total).Error
	return total, err
}

// ListLeaderboardPage returns a page of a (lbType, game) partition ordered by
// rank ascending.
func ListLeaderboardPage(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, offset, limit int) ([]domain.Leaderboard, error) {
	var out []domain.Leaderboard
	err := db.WithContext(ctx).
		Where("type = ? AND game = ?", lbType, game).
		Order("rank asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
