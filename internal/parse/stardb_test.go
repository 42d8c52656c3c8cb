package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func TestParseStarDB_Success(t *testing.T) {
	doc := []byte(`{
		"hsr": [{
			"uid": "800000001",
			"banners": {
				"character": [
					{"id": 100, "item_id": 1102, "timestamp": "2023-06-01T12:00:00+08:00"}
				],
				"standard": [
					{"id": 99, "item_id": 20000, "timestamp": "2023-05-31T08:30:00+08:00"}
				]
			}
		}]
	}`)
	recs, err := ParseStarDB(doc, starRailAccount("800000001"))
	if err != nil {
		t.Fatalf("ParseStarDB: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	byID := map[int64]Record{}
	for _, r := range recs {
		byID[r.WishID] = r
	}
	if byID[100].BannerType != 11 || byID[99].BannerType != 1 {
		t.Fatalf("banner bucket mapping wrong: %+v", byID)
	}
	// StarDB never exports rarity.
	if byID[100].Rarity != 0 {
		t.Fatalf("rarity should stay 0, got %d", byID[100].Rarity)
	}
	want := time.Date(2023, 6, 1, 4, 0, 0, 0, time.UTC)
	if !byID[100].Time.Equal(want) {
		t.Fatalf("time = %v, want instant %v", byID[100].Time, want)
	}
}

func TestParseStarDB_AccountNotInFileIsEmptyNotError(t *testing.T) {
	doc := []byte(`{"hsr":[{"uid":"800000009","banners":{}}]}`)
	recs, err := ParseStarDB(doc, starRailAccount("800000001"))
	if err != nil {
		t.Fatalf("ParseStarDB: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestParseStarDB_UnknownBannerBucket(t *testing.T) {
	doc := []byte(`{
		"hsr": [{"uid": "800000001", "banners": {"mystery": [
			{"id": 1, "item_id": 1102, "timestamp": "2023-06-01T12:00:00Z"}
		]}}]
	}`)
	if _, err := ParseStarDB(doc, starRailAccount("800000001")); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("got %v", err)
	}
}

func TestParseStarDB_GenshinAndZZZBuckets(t *testing.T) {
	doc := []byte(`{
		"gi":  [{"uid": "901211014", "banners": {"weapon": [{"id": 1, "item_id": 15501, "timestamp": "2023-06-01T12:00:00Z"}]}}],
		"zzz": [{"uid": "1000000001", "banners": {"w_engine": [{"id": 2, "item_id": 14102, "timestamp": "2023-06-01T12:00:00Z"}]}}]
	}`)

	gi, err := ParseStarDB(doc, genshinAccount("901211014"))
	if err != nil || len(gi) != 1 || gi[0].BannerType != 302 {
		t.Fatalf("genshin bucket: recs=%+v err=%v", gi, err)
	}

	zzzAcc := &domain.GameAccount{UID: "1000000001", Game: domain.GameZZZ}
	zzz, err := ParseStarDB(doc, zzzAcc)
	if err != nil || len(zzz) != 1 || zzz[0].BannerType != 3 {
		t.Fatalf("zzz bucket: recs=%+v err=%v", zzz, err)
	}
}

func TestParseStarDB_BadPullData(t *testing.T) {
	cases := map[string]string{
		"missing id":      `{"hsr":[{"uid":"800000001","banners":{"standard":[{"item_id":1,"timestamp":"2023-06-01T12:00:00Z"}]}}]}`,
		"missing item id": `{"hsr":[{"uid":"800000001","banners":{"standard":[{"id":1,"timestamp":"2023-06-01T12:00:00Z"}]}}]}`,
		"bad timestamp":   `{"hsr":[{"uid":"800000001","banners":{"standard":[{"id":1,"item_id":1,"timestamp":"yesterday"}]}}]}`,
	}
	for name, doc := range cases {
		if _, err := ParseStarDB([]byte(doc), starRailAccount("800000001")); !errors.Is(err, ErrMalformedFile) {
			t.Fatalf("%s: got %v", name, err)
		}
	}
}

func TestParseStarDB_MalformedJSON(t *testing.T) {
	if _, err := ParseStarDB([]byte("{"), starRailAccount("800000001")); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("got %v", err)
	}
}
