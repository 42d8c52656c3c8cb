// Package domain defines the persistence models for linked game accounts,
// gacha pull records, and leaderboards. This file declares the Game
// enumeration shared by every model and import source.
package domain

// Game identifies a supported HoYoverse title. The string values are stable
// and stored verbatim in the database, so they must never be renamed.
type Game string

const (
	// GameGenshin is Genshin Impact.
	GameGenshin Game = "genshin"
	// GameStarRail is Honkai: Star Rail.
	GameStarRail Game = "hsr"
	// GameZZZ is Zenless Zone Zero.
	GameZZZ Game = "zzz"
	// GameHonkai is Honkai Impact 3rd (no gacha-log import sources exist for
	// it yet; accounts may still be linked).
	GameHonkai Game = "honkai3"
	// GameToT is Tears of Themis.
	GameToT Game = "tot"
)

// Valid reports whether g is one of the supported games.
func (g Game) Valid() bool {
	switch g {
	case GameGenshin, GameStarRail, GameZZZ, GameHonkai, GameToT:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (g Game) String() string { return string(g) }
