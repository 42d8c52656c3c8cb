// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// GameAccount model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an account is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateAccount inserts a new linked account row owned by userID. The
// account ID is a randomly generated UUID (string), and CreatedAt is set to
// UTC. The (user_id, uid, game) unique index rejects relinking the same
// account twice.
func CreateAccount(ctx context.Context, db *gorm.DB, userID, uid string, game domain.Game) (*domain.GameAccount, error) {
	a := &domain.GameAccount{
		ID:        uuid.NewString(),
		UserID:    userID,
		UID:       uid,
		Game:      game,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListAccounts returns all linked accounts belonging to userID, ordered by
// creation time ascending (link order). It returns an empty slice if the
// user has no accounts. On DB error, it returns the error.
func ListAccounts(ctx context.Context, db *gorm.DB, userID string) ([]domain.GameAccount, error) {
	var out []domain.GameAccount
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// GetAccount fetches a single account by its ID and owner (userID). If the
// record does not exist, it returns ErrNotFound. On other DB errors, the raw
// error is returned.
func GetAccount(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GameAccount, error) {
	var a domain.GameAccount
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAccount removes an account owned by userID. Gacha records cascade.
// If no rows are affected it returns ErrNotFound.
func DeleteAccount(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.GameAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
