// Package parse implements the gacha-log import parsers. This file parses
// the Starward launcher's ZZZ gacha export: UIGF-like flat JSON where every
// record carries its own UID and region timezone.
package parse

import (
	"github.com/spf13/cast"

	json "github.com/goccy/go-json"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// starwardFile is the Starward ZZZ export layout.
type starwardFile struct {
	Info struct {
		ExportApp string `json:"export_app"`
	} `json:"info"`
	List []rawWish `json:"list"`
}

// ParseStarward normalizes a Starward ZZZ export into records for the given
// account. Each record states its own UID and timezone; a record bound to a
// different UID fails the whole import.
func ParseStarward(data []byte, account *domain.GameAccount) ([]Record, error) {
	if account.Game != domain.GameZZZ {
		return nil, ErrAccountGameMismatch
	}

	var f starwardFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrMalformedFile
	}
	if len(f.List) == 0 {
		return nil, ErrNoGachaLogFound
	}

	records := make([]Record, 0, len(f.List))
	for _, w := range f.List {
		if uid := cast.ToString(w.UID); uid != "" && uid != account.UID {
			return nil, ErrUIDMismatch
		}
		offset := ZZZUIDOffset(account.UID)
		if w.RegionTimeZone != nil {
			offset = *w.RegionTimeZone
		}
		rec, err := w.toRecord(offset)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
