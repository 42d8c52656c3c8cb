// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the gacha
// history log: bulk append, counting, listing, and the windowed-SQL
// maintenance that recomputes the derived num / num_since_last columns.
//
// The history log is append-only. Rows are created only by bulk import and
// never individually updated except for the two derived columns, which are
// fully recomputed per account after every import. Full recompute is chosen
// over incremental patching because import sources may interleave out of
// order; a recompute over the final row set is always correct.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// BulkCreateRecords appends a batch of pull records in one transaction.
//
// Duplicate pulls (same wish_id for the same game, e.g. a reimport of the
// same file) are rejected row-by-row through the unique constraint via
// ON CONFLICT DO NOTHING: they neither fail the batch nor double-count, while
// non-duplicates in the same batch still commit. Callers measure "records
// actually added" as count-after minus count-before, which is correct exactly
// because of this constraint-level rejection.
//
// Any other failure rolls the whole batch back; a malformed import never
// commits partially.
func BulkCreateRecords(ctx context.Context, db *gorm.DB, records []domain.GachaRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "wish_id"}, {Name: "game"}},
				DoNothing: true,
			}).
			CreateInBatches(records, 500).Error
	})
}

// CountRecords returns the total number of pull records for an account.
// It is the before/after basis for the imported-record delta.
func CountRecords(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.GachaRecord{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

// ListRecords returns every pull record for an account ordered by wish_id
// ascending (chronological order). Used by the UIGF export, which must be
// order-preserving.
func ListRecords(ctx context.Context, db *gorm.DB, accountID string) ([]domain.GachaRecord, error) {
	var out []domain.GachaRecord
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("wish_id asc").
		Find(&out).Error
	return out, err
}

// ListRecordsPage returns a page of pull records for an account ordered by
// wish_id descending (most recent first), optionally filtered by banner type
// (bannerType 0 means all banners).
func ListRecordsPage(ctx context.Context, db *gorm.DB, accountID string, bannerType, offset, limit int) ([]domain.GachaRecord, error) {
	q := db.WithContext(ctx).Where("account_id = ?", accountID)
	if bannerType != 0 {
		q = q.Where("banner_type = ?", bannerType)
	}
	var out []domain.GachaRecord
	err := q.Order("wish_id desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// CountRecordsByBanner returns the record count for an account, optionally
// filtered by banner type (0 means all), for pagination metadata.
func CountRecordsByBanner(ctx context.Context, db *gorm.DB, accountID string, bannerType int) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.GachaRecord{}).Where("account_id = ?", accountID)
	if bannerType != 0 {
		q = q.Where("banner_type = ?", bannerType)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// DeleteRecords removes the entire history of an account and returns the
// number of rows deleted.
func DeleteRecords(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&domain.GachaRecord{})
	return res.RowsAffected, res.Error
}

// RenumberRecords recomputes the two derived columns for one account in two
// windowed passes:
//
//  1. num: ROW_NUMBER() over each banner_type partition ordered by wish_id,
//     so num is a dense, gap-free 1-based sequence per banner no matter the
//     order records were imported in.
//  2. num_since_last: the gap to the previous row of the same rarity in the
//     same banner, computed from the freshly assigned num with LAG(). The
//     COALESCE default of 0 makes a rarity's first occurrence keep its own
//     num (the pity counter runs from game start).
//
// Both statements are scoped to one account to bound lock contention. They
// are declarative single-pass window queries rather than row-by-row updates,
// which is what guarantees one consistent snapshot under concurrent readers.
func RenumberRecords(ctx context.Context, db *gorm.DB, accountID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE gacha_records SET num = numbered.rn
			FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY banner_type ORDER BY wish_id) AS rn
				FROM gacha_records
				WHERE account_id = ?
			) AS numbered
			WHERE gacha_records.id = numbered.id`, accountID).Error; err != nil {
			return err
		}
		return tx.Exec(`
			UPDATE gacha_records SET num_since_last = pity.since
			FROM (
				SELECT id, num - COALESCE(LAG(num) OVER (PARTITION BY banner_type, rarity ORDER BY num), 0) AS since
				FROM gacha_records
				WHERE account_id = ?
			) AS pity
			WHERE gacha_records.id = pity.id`, accountID).Error
	})
}
