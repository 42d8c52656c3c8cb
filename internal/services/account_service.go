// Package services – AccountService
//
// This file implements the AccountService, which manages linked game
// accounts. It validates game and UID inputs, enforces ownership rules, and
// coordinates repository operations for linking, listing, and unlinking
// accounts. Accounts are the scoping identity for every gacha query, so the
// other services resolve an account through here before touching history.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/repo"
)

// AccountRepo defines the repository contract required by AccountService.
type AccountRepo interface {
	// CreateAccount inserts a new linked account row for the given user.
	CreateAccount(ctx context.Context, db *gorm.DB, userID, uid string, game domain.Game) (*domain.GameAccount, error)

	// ListAccounts returns all accounts belonging to the user.
	ListAccounts(ctx context.Context, db *gorm.DB, userID string) ([]domain.GameAccount, error)

	// GetAccount fetches an account by ID ensuring it belongs to the user.
	GetAccount(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GameAccount, error)

	// DeleteAccount unlinks an account (history cascades).
	DeleteAccount(ctx context.Context, db *gorm.DB, id, userID string) error
}

// AccountService provides account-level operations such as linking,
// listing, and unlinking game accounts.
type AccountService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the account repository used by this service.
	Repo AccountRepo
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB, r AccountRepo) *AccountService {
	return &AccountService{DB: db, Repo: r}
}

// Link validates and persists a new linked account owned by userID.
func (s *AccountService) Link(ctx context.Context, userID, uid string, game domain.Game) (*domain.GameAccount, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" || !allDigits(uid) {
		return nil, ErrInvalidUID
	}
	if !game.Valid() {
		return nil, ErrInvalidGame
	}

	account, err := s.Repo.CreateAccount(ctx, s.DB, userID, uid, game)
	if err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	return account, nil
}

// List returns all linked accounts for a user.
func (s *AccountService) List(ctx context.Context, userID string) ([]domain.GameAccount, error) {
	return s.Repo.ListAccounts(ctx, s.DB, userID)
}

// Get fetches one account, ensuring it belongs to the given user.
func (s *AccountService) Get(ctx context.Context, userID, accountID string) (*domain.GameAccount, error) {
	account, err := s.Repo.GetAccount(ctx, s.DB, accountID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Unlink removes an account and, through the FK cascade, its history.
func (s *AccountService) Unlink(ctx context.Context, userID, accountID string) error {
	if err := s.Repo.DeleteAccount(ctx, s.DB, accountID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// allDigits reports whether s consists only of ASCII digits.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
