// Package parse implements the gacha-log import parsers. This file parses
// the stardb.gg cross-game export. StarDB files bundle every account the
// user tracks across Genshin, Star Rail, and ZZZ, name their banners with
// words instead of numeric codes, and carry no rarity information, so records
// leave here with Rarity 0 for the catalog resolver to fill.
package parse

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// Named banner buckets to numeric banner_type codes, per game. The codes are
// the games' own gacha-type identifiers so StarDB imports land in the same
// partitions as every other source.
var (
	stardbGenshinBanners = map[string]int{
		"beginner":   100,
		"standard":   200,
		"character":  301,
		"weapon":     302,
		"chronicled": 500,
	}
	stardbStarRailBanners = map[string]int{
		"standard":          1,
		"departure":         2,
		"character":         11,
		"light_cone":        12,
		"collab_character":  21,
		"collab_light_cone": 22,
	}
	stardbZZZBanners = map[string]int{
		"standard":  1,
		"character": 2,
		"w_engine":  3,
		"bangboo":   5,
	}
)

// stardbPull is one pull in a StarDB export; timestamps are RFC 3339.
type stardbPull struct {
	ID        any    `json:"id"`
	ItemID    any    `json:"item_id"`
	Timestamp string `json:"timestamp"`
}

// stardbEntry is one tracked account inside a game sub-tree.
type stardbEntry struct {
	UID     any                     `json:"uid"`
	Banners map[string][]stardbPull `json:"banners"`
}

// stardbFile maps game codename -> tracked accounts.
type stardbFile struct {
	HSR []stardbEntry `json:"hsr"`
	GI  []stardbEntry `json:"gi"`
	ZZZ []stardbEntry `json:"zzz"`
}

// ParseStarDB normalizes a StarDB export into records for the given account.
//
// This parser is deliberately lenient about absence: a file whose sub-tree
// contains no entry for the target UID yields zero records and no error,
// because a multi-account export legitimately may not cover every linked
// account. Unknown banner bucket names, by contrast, are hard failures.
func ParseStarDB(data []byte, account *domain.GameAccount) ([]Record, error) {
	var f stardbFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrMalformedFile
	}

	var (
		entries []stardbEntry
		banners map[string]int
		offset  int
	)
	switch account.Game {
	case domain.GameGenshin:
		entries, banners, offset = f.GI, stardbGenshinBanners, GenshinUIDOffset(account.UID)
	case domain.GameStarRail:
		entries, banners, offset = f.HSR, stardbStarRailBanners, GenshinUIDOffset(account.UID)
	case domain.GameZZZ:
		entries, banners, offset = f.ZZZ, stardbZZZBanners, ZZZUIDOffset(account.UID)
	default:
		return nil, ErrAccountGameMismatch
	}

	var entry *stardbEntry
	for i := range entries {
		if cast.ToString(entries[i].UID) == account.UID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return []Record{}, nil
	}

	loc := FixedOffset(offset)
	var records []Record
	for bucket, pulls := range entry.Banners {
		bannerType, ok := banners[bucket]
		if !ok {
			return nil, fmt.Errorf("%w: unknown banner bucket %q", ErrMalformedFile, bucket)
		}
		for _, p := range pulls {
			wishID, err := cast.ToInt64E(p.ID)
			if err != nil || wishID == 0 {
				return nil, fmt.Errorf("%w: missing or invalid pull id %v", ErrMalformedFile, p.ID)
			}
			itemID, err := cast.ToIntE(p.ItemID)
			if err != nil || itemID == 0 {
				return nil, fmt.Errorf("%w: missing or invalid item id %v", ErrMalformedFile, p.ItemID)
			}
			t, err := time.Parse(time.RFC3339, p.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformedFile, p.Timestamp)
			}
			records = append(records, Record{
				WishID:     wishID,
				ItemID:     itemID,
				BannerType: bannerType,
				Time:       t.In(loc),
				// Rarity stays 0: StarDB does not export it.
			})
		}
	}
	return records, nil
}
