// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// ImportReceipt model used to implement safe-retry semantics for the gacha
// import endpoint.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// ErrDuplicate indicates that an import receipt already exists for the
// given (user_id, account_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetImportReceipt returns a non-expired receipt or ErrNotFound.
func GetImportReceipt(ctx context.Context, db *gorm.DB, userID, accountID, key string, now time.Time) (*domain.ImportReceipt, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.ImportReceipt
	err := db.WithContext(ctx).
		Where("user_id = ? AND account_id = ? AND key = ? AND expires_at > ?", userID, accountID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateImportReceipt inserts a receipt and returns ErrDuplicate on unique violation.
func CreateImportReceipt(ctx context.Context, db *gorm.DB, userID, accountID, key, source string, newRecords, status int, ttl time.Duration) (*domain.ImportReceipt, error) {
	now := time.Now().UTC()
	rec := &domain.ImportReceipt{
		ID:         uuid.NewString(),
		UserID:     userID,
		AccountID:  accountID,
		Key:        key,
		Source:     source,
		NewRecords: newRecords,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
