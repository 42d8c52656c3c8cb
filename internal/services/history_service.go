// Package services – HistoryService
//
// This file implements the read/manage surface over the gacha history log:
// paginated listing (optionally per banner) and full wipe. Both are thin
// passthroughs over the repository; the import pipeline owns all writes.
package services

import (
	"context"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// HistoryRepo defines the repository contract required by HistoryService.
type HistoryRepo interface {
	// CountRecordsByBanner counts an account's records, optionally per banner.
	CountRecordsByBanner(ctx context.Context, db *gorm.DB, accountID string, bannerType int) (int64, error)

	// ListRecordsPage returns a page of records, most recent first.
	ListRecordsPage(ctx context.Context, db *gorm.DB, accountID string, bannerType, offset, limit int) ([]domain.GachaRecord, error)

	// DeleteRecords wipes an account's history and reports rows removed.
	DeleteRecords(ctx context.Context, db *gorm.DB, accountID string) (int64, error)
}

// HistoryService provides read and manage operations over stored pulls.
type HistoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the history repository used by this service.
	Repo HistoryRepo
}

// ListPage returns a page of an account's pulls and the total count,
// optionally filtered to one banner type (0 means all).
func (s *HistoryService) ListPage(ctx context.Context, accountID string, bannerType, page, pageSize int) ([]domain.GachaRecord, int64, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("account.id", accountID),
			attribute.Int("banner_type", bannerType),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountRecordsByBanner(ctx, s.DB, accountID, bannerType)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.GachaRecord{}, 0, nil
	}

	items, err := s.Repo.ListRecordsPage(ctx, s.DB, accountID, bannerType, offset, pageSize)
	return items, total, err
}

// Wipe deletes the entire history of an account and returns how many rows
// were removed.
func (s *HistoryService) Wipe(ctx context.Context, accountID string) (int64, error) {
	return s.Repo.DeleteRecords(ctx, s.DB, accountID)
}
