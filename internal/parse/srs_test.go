package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func TestParseStarRailStationCSV_Success(t *testing.T) {
	csvData := []byte("id,gacha_type,item_id,time,rank_type\n" +
		"100,11,1102,2023-06-01 12:00:00,5\n" +
		"99,1,20000,2023-05-31 08:30:00,3\n")
	recs, err := ParseStarRailStationCSV(csvData, starRailAccount("800000001"))
	if err != nil {
		t.Fatalf("ParseStarRailStationCSV: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	// Times are always server-local UTC+8.
	want := time.Date(2023, 6, 1, 4, 0, 0, 0, time.UTC)
	if !recs[0].Time.Equal(want) {
		t.Fatalf("time = %v, want instant %v", recs[0].Time, want)
	}
	if recs[0].WishID != 100 || recs[0].BannerType != 11 || recs[0].ItemID != 1102 || recs[0].Rarity != 5 {
		t.Fatalf("record wrong: %+v", recs[0])
	}
}

func TestParseStarRailStationCSV_ColumnOrderIrrelevant(t *testing.T) {
	csvData := []byte("time,rank_type,id,item_id,gacha_type\n" +
		"2023-06-01 12:00:00,4,7,1210,12\n")
	recs, err := ParseStarRailStationCSV(csvData, starRailAccount("800000001"))
	if err != nil {
		t.Fatalf("ParseStarRailStationCSV: %v", err)
	}
	if recs[0].WishID != 7 || recs[0].BannerType != 12 || recs[0].ItemID != 1210 {
		t.Fatalf("header-indexed lookup broken: %+v", recs[0])
	}
}

func TestParseStarRailStationCSV_UIDColumnCrossChecked(t *testing.T) {
	csvData := []byte("id,gacha_type,item_id,time,rank_type,uid\n" +
		"1,11,1102,2023-06-01 12:00:00,5,800000009\n")
	_, err := ParseStarRailStationCSV(csvData, starRailAccount("800000001"))
	if !errors.Is(err, ErrUIDMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestParseStarRailStationCSV_MissingColumn(t *testing.T) {
	csvData := []byte("id,gacha_type,time,rank_type\n1,11,2023-06-01 12:00:00,5\n")
	_, err := ParseStarRailStationCSV(csvData, starRailAccount("800000001"))
	if !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("got %v", err)
	}
}

func TestParseStarRailStationCSV_HeaderOnly(t *testing.T) {
	csvData := []byte("id,gacha_type,item_id,time,rank_type\n")
	_, err := ParseStarRailStationCSV(csvData, starRailAccount("800000001"))
	if !errors.Is(err, ErrNoGachaLogFound) {
		t.Fatalf("got %v", err)
	}
}

func TestParseStarRailStationCSV_WrongGameAccount(t *testing.T) {
	csvData := []byte("id,gacha_type,item_id,time,rank_type\n1,11,1102,2023-06-01 12:00:00,5\n")
	zzz := &domain.GameAccount{UID: "1000000001", Game: domain.GameZZZ}
	if _, err := ParseStarRailStationCSV(csvData, zzz); !errors.Is(err, ErrAccountGameMismatch) {
		t.Fatalf("got %v", err)
	}
}
