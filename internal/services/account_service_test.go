package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/repo"
)

type fakeAccountRepo struct {
	createErr error
	deleteErr error
	getErr    error
	accounts  []domain.GameAccount

	createdUID  string
	createdGame domain.Game
}

func (f *fakeAccountRepo) CreateAccount(ctx context.Context, db *gorm.DB, userID, uid string, game domain.Game) (*domain.GameAccount, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdUID, f.createdGame = uid, game
	return &domain.GameAccount{ID: "new-id", UserID: userID, UID: uid, Game: game}, nil
}

func (f *fakeAccountRepo) ListAccounts(ctx context.Context, db *gorm.DB, userID string) ([]domain.GameAccount, error) {
	return f.accounts, nil
}

func (f *fakeAccountRepo) GetAccount(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GameAccount, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.GameAccount{ID: id, UserID: userID}, nil
}

func (f *fakeAccountRepo) DeleteAccount(ctx context.Context, db *gorm.DB, id, userID string) error {
	return f.deleteErr
}

func TestLink_TrimsAndValidatesUID(t *testing.T) {
	fake := &fakeAccountRepo{}
	svc := NewAccountService(nil, fake)
	ctx := context.Background()

	a, err := svc.Link(ctx, "u1", "  901211014  ", domain.GameGenshin)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if a.UID != "901211014" || fake.createdUID != "901211014" {
		t.Fatalf("uid not trimmed: %+v", a)
	}

	for _, bad := range []string{"", "   ", "12ab34", "uid-901"} {
		if _, err := svc.Link(ctx, "u1", bad, domain.GameGenshin); !errors.Is(err, ErrInvalidUID) {
			t.Fatalf("Link(%q): got %v", bad, err)
		}
	}
}

func TestLink_RejectsUnknownGame(t *testing.T) {
	svc := NewAccountService(nil, &fakeAccountRepo{})
	if _, err := svc.Link(context.Background(), "u1", "901211014", domain.Game("pokemon")); !errors.Is(err, ErrInvalidGame) {
		t.Fatalf("got %v", err)
	}
}

func TestLink_MapsUniqueViolationToDuplicate(t *testing.T) {
	cases := []error{
		gorm.ErrDuplicatedKey,
		errors.New("UNIQUE constraint failed: game_accounts.user_id"),
		errors.New("constraint failed: UNIQUE constraint failed (2067)"),
	}
	for _, dbErr := range cases {
		svc := NewAccountService(nil, &fakeAccountRepo{createErr: dbErr})
		if _, err := svc.Link(context.Background(), "u1", "901211014", domain.GameGenshin); !errors.Is(err, ErrDuplicateAccount) {
			t.Fatalf("Link with %v: got %v", dbErr, err)
		}
	}

	// Unrelated errors pass through untouched.
	boom := errors.New("disk full")
	svc := NewAccountService(nil, &fakeAccountRepo{createErr: boom})
	if _, err := svc.Link(context.Background(), "u1", "901211014", domain.GameGenshin); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestGet_MapsNotFound(t *testing.T) {
	svc := NewAccountService(nil, &fakeAccountRepo{getErr: repo.ErrNotFound})
	if _, err := svc.Get(context.Background(), "u1", "a1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestUnlink_MapsNotFound(t *testing.T) {
	svc := NewAccountService(nil, &fakeAccountRepo{deleteErr: repo.ErrNotFound})
	if err := svc.Unlink(context.Background(), "u1", "a1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v", err)
	}

	svc = NewAccountService(nil, &fakeAccountRepo{})
	if err := svc.Unlink(context.Background(), "u1", "a1"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
}

func TestList_Passthrough(t *testing.T) {
	fake := &fakeAccountRepo{accounts: []domain.GameAccount{{ID: "a1"}, {ID: "a2"}}}
	svc := NewAccountService(nil, fake)
	got, err := svc.List(context.Background(), "u1")
	if err != nil || len(got) != 2 {
		t.Fatalf("List = %+v, err=%v", got, err)
	}
}
