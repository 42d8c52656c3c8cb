// Package domain defines the persistence models for linked game accounts,
// gacha pull records, and leaderboards. These types are mapped with GORM and
// form the core data layer of the gacha-log backend.
package domain

import (
	"time"
)

// GameAccount represents a linked in-game account owned by a user. Every
// gacha record belongs to exactly one account, and all history queries are
// scoped by account, so cross-account interference is structurally prevented.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owning user; indexed for efficient retrieval.
//   - UID: the in-game account UID as issued by the game server. Kept as a
//     string because leading digits are significant (region heuristics).
//   - Game: which title this account belongs to.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type GameAccount struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_accounts;uniqueIndex:ux_user_uid_game,priority:1"`
	UID       string    `json:"uid"        gorm:"type:varchar(16);not null;uniqueIndex:ux_user_uid_game,priority:2"`
	Game      Game      `json:"game"       gorm:"type:varchar(16);not null;uniqueIndex:ux_user_uid_game,priority:3"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for GameAccount.
func (GameAccount) TableName() string { return "game_accounts" }

// GachaRecord is one pull event in the append-only gacha history log.
//
// WishID is the source-provided, globally ordered pull identifier and is the
// true event-ordering key; source timestamps can collide or be locale-shifted
// so Time is display data only. (WishID, Game) is unique at the database
// level, which is what makes reimporting the same file idempotent.
//
// Num and NumSinceLast are derived columns. They are never assigned at
// insert time: multiple import sources may interleave out of order, so both
// are fully recomputed for the owning account after every import (see
// repo.RenumberRecords). Num is the 1-based position of the pull within its
// (account, banner_type) partition ordered by WishID; NumSinceLast is the
// number of pulls since the previous pull of the same rarity in that
// partition, with a rarity's first occurrence keeping its own Num (the pity
// counter runs from game start).
type GachaRecord struct {
	ID           int64     `json:"id"             gorm:"primaryKey;autoIncrement"`
	AccountID    string    `json:"account_id"     gorm:"type:char(36);not null;index:idx_account_records;index:idx_account_banner,priority:1"`
	Game         Game      `json:"game"           gorm:"type:varchar(16);not null;uniqueIndex:ux_wish_game,priority:2"`
	WishID       int64     `json:"wish_id"        gorm:"not null;uniqueIndex:ux_wish_game,priority:1"`
	Rarity       int       `json:"rarity"         gorm:"not null;check:rarity BETWEEN 2 AND 5"`
	ItemID       int       `json:"item_id"        gorm:"not null"`
	BannerType   int       `json:"banner_type"    gorm:"not null;index:idx_account_banner,priority:2"`
	Time         time.Time `json:"time"           gorm:"not null"`
	Num          int       `json:"num"            gorm:"not null;default:0"`
	NumSinceLast int       `json:"num_since_last" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	// Account is the owning linked account. Records are cascade-deleted
	// when the account is unlinked.
	Account GameAccount `json:"-" gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for GachaRecord.
func (GachaRecord) TableName() string { return "gacha_records" }

// Leaderboard holds one entry of a per-game, per-metric leaderboard. Rank is
// a derived column recomputed for the whole (type, game) partition whenever a
// value changes, mirroring the full-recompute design of the gacha derived
// columns: write cost is traded for correctness simplicity.
//
// Order semantics (lower-is-better vs higher-is-better) are decided per
// leaderboard type at rerank time, not stored per row.
type Leaderboard struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Type      string    `json:"type"       gorm:"type:varchar(32);not null;uniqueIndex:ux_type_game_uid,priority:1;index:idx_type_game,priority:1"`
	Game      Game      `json:"game"       gorm:"type:varchar(16);not null;uniqueIndex:ux_type_game_uid,priority:2;index:idx_type_game,priority:2"`
	UID       string    `json:"uid"        gorm:"type:varchar(16);not null;uniqueIndex:ux_type_game_uid,priority:3"`
	Value     float64   `json:"value"      gorm:"not null"`
	Rank      int       `json:"rank"       gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Leaderboard.
func (Leaderboard) TableName() string { return "leaderboards" }
