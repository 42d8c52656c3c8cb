// Package parse implements the gacha-log import parsers. This file parses
// the Star Rail Station warp-history CSV export, whose columns mirror the
// official warp API fields. Times are server-local UTC+8 regardless of the
// account region (the exporting tool normalizes them).
package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// srsOffsetHours is the fixed offset of Star Rail Station CSV timestamps.
const srsOffsetHours = 8

// ParseStarRailStationCSV normalizes a Star Rail Station CSV into records for
// the given account. The exporter is single-account, so when the file carries
// no uid column it is trusted to belong to the target account; when a uid
// column is present it is cross-checked and a mismatch fails the import.
func ParseStarRailStationCSV(data []byte, account *domain.GameAccount) ([]Record, error) {
	if account.Game != domain.GameStarRail {
		return nil, ErrAccountGameMismatch
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, ErrMalformedFile
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "gacha_type", "item_id", "time", "rank_type"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedFile, required)
		}
	}
	uidCol, hasUID := col["uid"]

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrMalformedFile
		}
		if hasUID && row[uidCol] != account.UID {
			return nil, ErrUIDMismatch
		}

		w := rawWish{
			ID:        row[col["id"]],
			GachaType: row[col["gacha_type"]],
			ItemID:    row[col["item_id"]],
			RankType:  row[col["rank_type"]],
			Time:      row[col["time"]],
		}
		rec, err := w.toRecord(srsOffsetHours)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoGachaLogFound
	}
	return records, nil
}
