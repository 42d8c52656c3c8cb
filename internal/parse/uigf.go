// Package parse implements the gacha-log import parsers. This file parses
// UIGF files: the legacy flat v3 layout (single UID, Genshin) and the unified
// v4 layout (per-game arrays, multiple UIDs per file).
package parse

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// ItemNameLookup lazily provides the Genshin item name -> item id catalog
// map. It is only invoked when a UIGF file carries records without item ids,
// so well-formed files cost no network round-trip.
type ItemNameLookup func(ctx context.Context) (map[string]int, error)

// uigfEntry is one per-UID block inside a UIGF v4 game array.
type uigfEntry struct {
	UID      any       `json:"uid"`
	Timezone *int      `json:"timezone"`
	List     []rawWish `json:"list"`
}

// uigfFile covers both UIGF layouts; which fields are populated decides the
// schema version.
type uigfFile struct {
	Info struct {
		UID            any    `json:"uid"`
		UIGFVersion    string `json:"uigf_version"`
		Version        string `json:"version"`
		RegionTimeZone *int   `json:"region_time_zone"`
	} `json:"info"`
	List []rawWish `json:"list"`

	// v4 per-game arrays, keyed by the official game codenames.
	HK4E  []uigfEntry `json:"hk4e"`
	HKRPG []uigfEntry `json:"hkrpg"`
	NAP   []uigfEntry `json:"nap"`
}

// ParseUIGF normalizes a UIGF v3 or v4 document into records for the given
// account. Schema detection is a deliberate branch on version markers, not
// exception-driven: files carrying neither marker are rejected with
// ErrUnrecognizedSchemaVersion.
//
// When any record lacks an item id, the item name is resolved through
// itemNames; an unresolvable name aborts the whole import.
func ParseUIGF(ctx context.Context, data []byte, account *domain.GameAccount, itemNames ItemNameLookup) ([]Record, error) {
	var f uigfFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrMalformedFile
	}

	switch {
	case strings.HasPrefix(f.Info.Version, "v4"):
		return parseUIGFv4(ctx, &f, account, itemNames)
	case f.Info.UIGFVersion != "":
		return parseUIGFv3(ctx, &f, account, itemNames)
	default:
		return nil, ErrUnrecognizedSchemaVersion
	}
}

// parseUIGFv3 handles the flat legacy layout. v3 files are Genshin exports;
// the timezone falls back to the UID-prefix heuristic when the file does not
// state one.
func parseUIGFv3(ctx context.Context, f *uigfFile, account *domain.GameAccount, itemNames ItemNameLookup) ([]Record, error) {
	if account.Game != domain.GameGenshin {
		return nil, ErrAccountGameMismatch
	}
	if cast.ToString(f.Info.UID) != account.UID {
		return nil, ErrUIDMismatch
	}

	offset := GenshinUIDOffset(account.UID)
	if f.Info.RegionTimeZone != nil {
		offset = *f.Info.RegionTimeZone
	}
	return convertWishes(ctx, f.List, offset, itemNames)
}

// parseUIGFv4 handles the unified layout: locate the game array for the
// account's game, then the entry bound to the account's UID.
func parseUIGFv4(ctx context.Context, f *uigfFile, account *domain.GameAccount, itemNames ItemNameLookup) ([]Record, error) {
	var entries []uigfEntry
	switch account.Game {
	case domain.GameGenshin:
		entries = f.HK4E
	case domain.GameStarRail:
		entries = f.HKRPG
	case domain.GameZZZ:
		entries = f.NAP
	default:
		return nil, ErrAccountGameMismatch
	}
	if len(entries) == 0 {
		return nil, ErrNoGachaLogFound
	}

	for _, e := range entries {
		if cast.ToString(e.UID) != account.UID {
			continue
		}
		offset := defaultOffset(account)
		if e.Timezone != nil {
			offset = *e.Timezone
		}
		return convertWishes(ctx, e.List, offset, itemNames)
	}
	return nil, ErrUIDMismatch
}

// defaultOffset picks the UID-prefix heuristic appropriate for the account's
// game.
func defaultOffset(account *domain.GameAccount) int {
	if account.Game == domain.GameZZZ {
		return ZZZUIDOffset(account.UID)
	}
	return GenshinUIDOffset(account.UID)
}

// convertWishes converts raw wishes and, if any lack an item id, resolves
// item names through the catalog map in one batch. Names that stay
// unresolved fail the conversion; partial imports of a malformed file are
// never produced.
func convertWishes(ctx context.Context, wishes []rawWish, offsetHours int, itemNames ItemNameLookup) ([]Record, error) {
	records := make([]Record, 0, len(wishes))
	unresolved := make([]int, 0) // indexes into records

	for _, w := range wishes {
		rec, err := w.toRecord(offsetHours)
		if err != nil {
			return nil, err
		}
		if rec.ItemID == 0 {
			if w.Name == "" {
				return nil, ErrUnresolvableItemName
			}
			unresolved = append(unresolved, len(records))
		}
		records = append(records, rec)
	}

	if len(unresolved) > 0 {
		if itemNames == nil {
			return nil, ErrUnresolvableItemName
		}
		nameToID, err := itemNames(ctx)
		if err != nil {
			return nil, err
		}
		for _, i := range unresolved {
			id, ok := nameToID[wishes[i].Name]
			if !ok {
				return nil, ErrUnresolvableItemName
			}
			records[i].ItemID = id
		}
	}
	return records, nil
}
