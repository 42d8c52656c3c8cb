// Package parse implements the gacha-log import parsers. This file parses
// SRGF, the Star Rail GachaLog Format: UIGF v3's flat shape, Star Rail only,
// with the region timezone always explicit in the file.
package parse

import (
	"github.com/spf13/cast"

	json "github.com/goccy/go-json"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// srgfFile is the SRGF v1.x document layout.
type srgfFile struct {
	Info struct {
		UID            any    `json:"uid"`
		SRGFVersion    string `json:"srgf_version"`
		RegionTimeZone *int   `json:"region_time_zone"`
	} `json:"info"`
	List []rawWish `json:"list"`
}

// ParseSRGF normalizes an SRGF document into records for the given account.
// The account must be a Star Rail account and the file's UID must match it.
func ParseSRGF(data []byte, account *domain.GameAccount) ([]Record, error) {
	if account.Game != domain.GameStarRail {
		return nil, ErrAccountGameMismatch
	}

	var f srgfFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrMalformedFile
	}
	if f.Info.SRGFVersion == "" {
		return nil, ErrUnrecognizedSchemaVersion
	}
	if cast.ToString(f.Info.UID) != account.UID {
		return nil, ErrUIDMismatch
	}
	if f.Info.RegionTimeZone == nil {
		// SRGF requires the timezone; a file without one is broken.
		return nil, ErrMalformedFile
	}

	records := make([]Record, 0, len(f.List))
	for _, w := range f.List {
		rec, err := w.toRecord(*f.Info.RegionTimeZone)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
