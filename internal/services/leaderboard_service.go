// Package services – LeaderboardService
//
// This file implements the leaderboard surface: score submission with an
// immediate full-partition rerank, and ranked listing. Each leaderboard type
// carries fixed order semantics (lower-is-better vs higher-is-better) in the
// registry below; submissions for unregistered types are rejected so a typo
// can never create a silently unranked board.
package services

import (
	"context"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/repo"
)

// leaderboardOrders registers the known leaderboard types and how their
// values rank. Ascending means the smallest value takes rank 1.
var leaderboardOrders = map[string]repo.RankOrder{
	"lifetime_pulls":     repo.RankDesc,
	"five_star_count":    repo.RankDesc,
	"avg_five_star_pity": repo.RankAsc,
	"fastest_five_star":  repo.RankAsc,
}

// LeaderboardRepo defines the repository contract required by
// LeaderboardService.
type LeaderboardRepo interface {
	// UpsertScore inserts or updates one (type, game, uid) value.
	UpsertScore(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, uid string, value float64) error

	// RerankLeaderboard recomputes ranks for a whole (type, game) partition.
	RerankLeaderboard(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, order repo.RankOrder) error

	// CountLeaderboard returns the partition size.
	CountLeaderboard(ctx context.Context, db *gorm.DB, lbType string, game domain.Game) (int64, error)

	// ListLeaderboardPage returns a page of the partition by rank.
	ListLeaderboardPage(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, offset, limit int) ([]domain.Leaderboard, error)
}

// LeaderboardService provides score submission and ranked listing.
type LeaderboardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the leaderboard repository used by this service.
	Repo LeaderboardRepo
}

// Submit records a score and reranks the affected (type, game) partition.
// The rerank is a full recompute, so concurrent submissions converge on the
// correct order no matter how they interleave.
func (s *LeaderboardService) Submit(ctx context.Context, lbType string, game domain.Game, uid string, value float64) error {
	tr := otel.Tracer("services/LeaderboardService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("leaderboard.type", lbType),
			attribute.String("game", game.String()),
		),
	)
	defer span.End()

	order, ok := leaderboardOrders[lbType]
	if !ok {
		return ErrUnknownLeaderboard
	}
	if !game.Valid() {
		return ErrInvalidGame
	}

	if err := s.Repo.UpsertScore(ctx, s.DB, lbType, game, uid, value); err != nil {
		return err
	}
	return s.Repo.RerankLeaderboard(ctx, s.DB, lbType, game, order)
}

// TopPage returns one page of a leaderboard ordered by rank, plus the
// partition size.
func (s *LeaderboardService) TopPage(ctx context.Context, lbType string, game domain.Game, page, pageSize int) ([]domain.Leaderboard, int64, error) {
	if _, ok := leaderboardOrders[lbType]; !ok {
		return nil, 0, ErrUnknownLeaderboard
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountLeaderboard(ctx, s.DB, lbType, game)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Leaderboard{}, 0, nil
	}

	items, err := s.Repo.ListLeaderboardPage(ctx, s.DB, lbType, game, offset, pageSize)
	return items, total, err
}
