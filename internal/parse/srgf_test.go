package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func starRailAccount(uid string) *domain.GameAccount {
	return &domain.GameAccount{ID: "acc-hsr", UID: uid, Game: domain.GameStarRail}
}

func TestParseSRGF_Success(t *testing.T) {
	doc := []byte(`{
		"info": {"uid": "800000001", "srgf_version": "v1.0", "region_time_zone": 8},
		"list": [
			{"id": "2", "gacha_type": "11", "item_id": "1102", "rank_type": "5", "time": "2023-06-01 12:00:00"},
			{"id": "1", "gacha_type": "1", "item_id": "20000", "rank_type": "3", "time": "2023-05-31 08:30:00"}
		]
	}`)
	recs, err := ParseSRGF(doc, starRailAccount("800000001"))
	if err != nil {
		t.Fatalf("ParseSRGF: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	want := time.Date(2023, 6, 1, 4, 0, 0, 0, time.UTC)
	if !recs[0].Time.Equal(want) {
		t.Fatalf("time = %v, want instant %v", recs[0].Time, want)
	}
	if recs[0].BannerType != 11 || recs[0].Rarity != 5 {
		t.Fatalf("record wrong: %+v", recs[0])
	}
}

func TestParseSRGF_WrongGameAccount(t *testing.T) {
	doc := []byte(`{"info":{"uid":"800000001","srgf_version":"v1.0","region_time_zone":8},"list":[]}`)
	if _, err := ParseSRGF(doc, genshinAccount("800000001")); !errors.Is(err, ErrAccountGameMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestParseSRGF_MissingVersion(t *testing.T) {
	doc := []byte(`{"info":{"uid":"800000001","region_time_zone":8},"list":[]}`)
	if _, err := ParseSRGF(doc, starRailAccount("800000001")); !errors.Is(err, ErrUnrecognizedSchemaVersion) {
		t.Fatalf("got %v", err)
	}
}

func TestParseSRGF_UIDMismatch(t *testing.T) {
	doc := []byte(`{"info":{"uid":"800000001","srgf_version":"v1.0","region_time_zone":8},"list":[]}`)
	if _, err := ParseSRGF(doc, starRailAccount("800000002")); !errors.Is(err, ErrUIDMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestParseSRGF_MissingTimezone(t *testing.T) {
	doc := []byte(`{"info":{"uid":"800000001","srgf_version":"v1.0"},"list":[]}`)
	if _, err := ParseSRGF(doc, starRailAccount("800000001")); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("got %v", err)
	}
}

func TestParseSRGF_MalformedJSON(t *testing.T) {
	if _, err := ParseSRGF([]byte("[1,2"), starRailAccount("800000001")); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("got %v", err)
	}
}
