// Package parse implements the gacha-log import parsers. This file parses
// the zzz.rng.moe tracker backup: profiles keyed by slot number, each holding
// stores of per-gacha-type item lists. The first profile slot is the one
// imported; the others belong to the tracker's multi-profile feature and are
// ignored.
package parse

import (
	"sort"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// rngMoeItem is one tracked pull in a zzz.rng.moe backup.
type rngMoeItem struct {
	ID       any    `json:"id"`
	ItemID   any    `json:"item_id"`
	Time     string `json:"time"`
	RankType any    `json:"rank_type"`
}

// rngMoeProfile is one profile slot; BindUID is only present once the tracker
// has been linked to an in-game account.
type rngMoeProfile struct {
	BindUID any `json:"bindUid"`
	Stores  map[string]struct {
		Items map[string][]rngMoeItem `json:"items"`
	} `json:"stores"`
}

// rngMoeFile is the backup envelope.
type rngMoeFile struct {
	Data struct {
		Profiles map[string]rngMoeProfile `json:"profiles"`
	} `json:"data"`
}

// ParseRngMoe normalizes a zzz.rng.moe backup into records for the given
// account. When the selected profile carries a bound UID it must match the
// account; an unbound profile is trusted. The timezone comes from the ZZZ
// UID-prefix heuristic because the backup stores local time strings without
// an offset.
func ParseRngMoe(data []byte, account *domain.GameAccount) ([]Record, error) {
	if account.Game != domain.GameZZZ {
		return nil, ErrAccountGameMismatch
	}

	var f rngMoeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrMalformedFile
	}
	if len(f.Data.Profiles) == 0 {
		return nil, ErrNoGachaLogFound
	}

	// Profiles are keyed by slot number as strings; take the lowest slot.
	keys := make([]string, 0, len(f.Data.Profiles))
	for k := range f.Data.Profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	profile := f.Data.Profiles[keys[0]]

	if uid := cast.ToString(profile.BindUID); uid != "" && uid != account.UID {
		return nil, ErrUIDMismatch
	}

	offset := ZZZUIDOffset(account.UID)
	var records []Record
	for _, store := range profile.Stores {
		for gachaType, items := range store.Items {
			bannerType, err := cast.ToIntE(gachaType)
			if err != nil {
				return nil, ErrMalformedFile
			}
			for _, it := range items {
				w := rawWish{
					ID:        it.ID,
					GachaType: bannerType,
					ItemID:    it.ItemID,
					RankType:  it.RankType,
					Time:      it.Time,
				}
				rec, err := w.toRecord(offset)
				if err != nil {
					return nil, err
				}
				records = append(records, rec)
			}
		}
	}
	return records, nil
}
