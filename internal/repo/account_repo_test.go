package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func TestCreateAccount_AndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a, err := CreateAccount(ctx, db, "u1", "901211014", domain.GameGenshin)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := GetAccount(ctx, db, a.ID, "u1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.UID != "901211014" || got.Game != domain.GameGenshin {
		t.Fatalf("readback wrong: %+v", got)
	}

	// Ownership is part of the lookup key.
	if _, err := GetAccount(ctx, db, a.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user get: %v", err)
	}
}

func TestCreateAccount_DuplicateRejected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := CreateAccount(ctx, db, "u1", "901211014", domain.GameGenshin); err != nil {
		t.Fatalf("first link: %v", err)
	}
	if _, err := CreateAccount(ctx, db, "u1", "901211014", domain.GameGenshin); err == nil {
		t.Fatalf("relinking the same account should fail")
	}
	// Same UID under another user or game is fine.
	if _, err := CreateAccount(ctx, db, "u2", "901211014", domain.GameGenshin); err != nil {
		t.Fatalf("other user, same uid: %v", err)
	}
	if _, err := CreateAccount(ctx, db, "u1", "901211014", domain.GameStarRail); err != nil {
		t.Fatalf("same uid, other game: %v", err)
	}
}

func TestListAccounts_ScopedAndOrdered(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first, err := CreateAccount(ctx, db, "u1", "901211014", domain.GameGenshin)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := CreateAccount(ctx, db, "u2", "800000001", domain.GameStarRail); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	second, err := CreateAccount(ctx, db, "u1", "1300000001", domain.GameZZZ)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	got, err := ListAccounts(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("list wrong: %+v", got)
	}

	empty, err := ListAccounts(ctx, db, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %+v err=%v", empty, err)
	}
}

func TestDeleteAccount_CascadesRecords(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a, err := CreateAccount(ctx, db, "u1", "800000001", domain.GameStarRail)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := BulkCreateRecords(ctx, db, []domain.GachaRecord{
		record(a.ID, domain.GameStarRail, 1, 3, 11),
		record(a.ID, domain.GameStarRail, 2, 3, 11),
	}); err != nil {
		t.Fatalf("BulkCreateRecords: %v", err)
	}

	if err := DeleteAccount(ctx, db, a.ID, "u1"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	left, err := CountRecords(ctx, db, a.ID)
	if err != nil || left != 0 {
		t.Fatalf("records survived unlink: count=%d err=%v", left, err)
	}

	if err := DeleteAccount(ctx, db, a.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
