// Package parse implements the gacha-log import parsers. Each supported
// export format is normalized by a pure function into a common intermediate
// Record slice, which the import service persists after optional rarity
// resolution. Parsers never touch the database; their only side channel is
// the lazy item-name lookup a UIGF file may require.
package parse

import (
	"sort"
	"time"
)

// Source identifies a gacha-log export format accepted by the importer.
type Source string

const (
	// SourceUIGF is the community "Unified Interchangeable GachaLog Format",
	// versions v3.x (flat, Genshin) and v4.0 (multi-game, multi-UID).
	SourceUIGF Source = "uigf"
	// SourceSRGF is the Star Rail GachaLog Format (UIGF v3 shape, Star Rail only).
	SourceSRGF Source = "srgf"
	// SourceStarRailStation is the Star Rail Station warp-history CSV export.
	SourceStarRailStation Source = "star_rail_station"
	// SourceStarDB is the stardb.gg cross-game JSON export.
	SourceStarDB Source = "stardb"
	// SourceZZZRngMoe is the zzz.rng.moe tracker backup JSON.
	SourceZZZRngMoe Source = "zzz_rng_moe"
	// SourceStarward is the Starward launcher ZZZ gacha export JSON.
	SourceStarward Source = "starward"
)

// Valid reports whether s is a known import source.
func (s Source) Valid() bool {
	switch s {
	case SourceUIGF, SourceSRGF, SourceStarRailStation, SourceStarDB, SourceZZZRngMoe, SourceStarward:
		return true
	}
	return false
}

// Extension returns the file extension (with leading dot) expected for this
// source's uploads. Everything is JSON except the Star Rail Station CSV.
func (s Source) Extension() string {
	if s == SourceStarRailStation {
		return ".csv"
	}
	return ".json"
}

// Record is the normalized intermediate form of one pull event, shared by all
// parsers. WishID is the source-assigned globally ordered pull id and the
// canonical ordering key. A Rarity of 0 means the source did not carry rarity
// information and it must be filled from the reference catalog before the
// record may be persisted.
type Record struct {
	WishID     int64
	Rarity     int
	ItemID     int
	BannerType int
	Time       time.Time
}

// SortRecords stable-sorts records by WishID ascending. Ascending wish id is
// assumed to equal chronological order; no source is expected to produce ties.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].WishID < records[j].WishID
	})
}

// MissingRarity reports whether any record still lacks a rarity and therefore
// needs a catalog lookup before persistence.
func MissingRarity(records []Record) bool {
	for _, r := range records {
		if r.Rarity == 0 {
			return true
		}
	}
	return false
}
