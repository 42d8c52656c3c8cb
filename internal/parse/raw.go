// Package parse implements the gacha-log import parsers. This file defines
// the loosely-typed wire shape shared by the UIGF-family formats (UIGF v3/v4,
// SRGF, Starward) and its conversion into the strict intermediate Record.
package parse

import (
	"fmt"

	"github.com/spf13/cast"
)

// rawWish mirrors one pull object as the UIGF-family exporters write it.
// Exporters disagree on scalar types (ids and ranks arrive as strings or
// numbers depending on the tool), so the variant fields are decoded as `any`
// and coerced afterwards.
type rawWish struct {
	ID             any    `json:"id"`
	UID            any    `json:"uid"`
	GachaType      any    `json:"gacha_type"`
	UIGFGachaType  any    `json:"uigf_gacha_type"`
	ItemID         any    `json:"item_id"`
	Name           string `json:"name"`
	RankType       any    `json:"rank_type"`
	Time           string `json:"time"`
	RegionTimeZone *int   `json:"region_time_zone"`
}

// toRecord converts a rawWish into a Record using the given UTC offset for
// time parsing. An absent item id yields ItemID 0 (the caller decides whether
// a name lookup can fill it); an absent rank type yields Rarity 0.
func (w rawWish) toRecord(offsetHours int) (Record, error) {
	wishID, err := cast.ToInt64E(w.ID)
	if err != nil || wishID == 0 {
		return Record{}, fmt.Errorf("%w: missing or invalid pull id %v", ErrMalformedFile, w.ID)
	}

	banner := w.UIGFGachaType
	if banner == nil || banner == "" {
		banner = w.GachaType
	}
	bannerType, err := cast.ToIntE(banner)
	if err != nil || bannerType == 0 {
		return Record{}, fmt.Errorf("%w: missing or invalid gacha type %v", ErrMalformedFile, banner)
	}

	t, err := parseServerTime(w.Time, offsetHours)
	if err != nil {
		return Record{}, err
	}

	// Optional fields: 0 means "not carried by the source".
	itemID := 0
	if w.ItemID != nil && w.ItemID != "" {
		if itemID, err = cast.ToIntE(w.ItemID); err != nil {
			return Record{}, fmt.Errorf("%w: invalid item id %v", ErrMalformedFile, w.ItemID)
		}
	}
	rarity := 0
	if w.RankType != nil && w.RankType != "" {
		if rarity, err = cast.ToIntE(w.RankType); err != nil {
			return Record{}, fmt.Errorf("%w: invalid rank type %v", ErrMalformedFile, w.RankType)
		}
	}

	return Record{
		WishID:     wishID,
		Rarity:     rarity,
		ItemID:     itemID,
		BannerType: bannerType,
		Time:       t,
	}, nil
}
