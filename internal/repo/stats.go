// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// RecordsStats returns aggregate metadata for an account's gacha history:
// the total number of rows and the maximum UpdatedAt timestamp among those
// rows.
//
// It executes two lightweight queries against the gacha_records table scoped
// to the provided accountID. When the account has no records, the returned
// count is 0 and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total records for accountID
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func RecordsStats(ctx context.Context, db *gorm.DB, accountID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.GachaRecord{}).Where("account_id = ?", accountID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
