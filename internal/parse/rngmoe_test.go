package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

func zzzAccount(uid string) *domain.GameAccount {
	return &domain.GameAccount{ID: "acc-zzz", UID: uid, Game: domain.GameZZZ}
}

func TestParseRngMoe_Success(t *testing.T) {
	doc := []byte(`{
		"data": {"profiles": {"1": {
			"bindUid": "1300000001",
			"stores": {"0": {"items": {
				"2": [
					{"id": "10", "item_id": "1011", "time": "2024-07-10 20:00:00", "rank_type": "4"}
				],
				"1": [
					{"id": "9", "item_id": "12001", "time": "2024-07-10 19:00:00", "rank_type": "2"}
				]
			}}}
		}}}
	}`)
	recs, err := ParseRngMoe(doc, zzzAccount("1300000001"))
	if err != nil {
		t.Fatalf("ParseRngMoe: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	byID := map[int64]Record{}
	for _, r := range recs {
		byID[r.WishID] = r
	}
	if byID[10].BannerType != 2 || byID[9].BannerType != 1 {
		t.Fatalf("gacha type keys not mapped: %+v", byID)
	}
	// Asia UID prefix 13 -> UTC+8.
	want := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	if !byID[10].Time.Equal(want) {
		t.Fatalf("time = %v, want instant %v", byID[10].Time, want)
	}
}

func TestParseRngMoe_LowestProfileSlotWins(t *testing.T) {
	doc := []byte(`{
		"data": {"profiles": {
			"2": {"bindUid": "1300000009", "stores": {}},
			"1": {"bindUid": "1300000001", "stores": {"0": {"items": {
				"1": [{"id": "5", "item_id": "12001", "time": "2024-07-10 19:00:00", "rank_type": "2"}]
			}}}}
		}}
	}`)
	recs, err := ParseRngMoe(doc, zzzAccount("1300000001"))
	if err != nil {
		t.Fatalf("ParseRngMoe: %v", err)
	}
	if len(recs) != 1 || recs[0].WishID != 5 {
		t.Fatalf("slot 1 should win over slot 2: %+v", recs)
	}
}

func TestParseRngMoe_BoundUIDMismatch(t *testing.T) {
	doc := []byte(`{"data":{"profiles":{"1":{"bindUid":"1300000009","stores":{}}}}}`)
	if _, err := ParseRngMoe(doc, zzzAccount("1300000001")); !errors.Is(err, ErrUIDMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestParseRngMoe_UnboundProfileTrusted(t *testing.T) {
	doc := []byte(`{"data":{"profiles":{"1":{"stores":{"0":{"items":{
		"1": [{"id": "3", "item_id": "12001", "time": "2024-07-10 19:00:00", "rank_type": "2"}]
	}}}}}}}`)
	recs, err := ParseRngMoe(doc, zzzAccount("1300000001"))
	if err != nil || len(recs) != 1 {
		t.Fatalf("unbound profile should import: recs=%+v err=%v", recs, err)
	}
}

func TestParseRngMoe_NoProfiles(t *testing.T) {
	doc := []byte(`{"data":{"profiles":{}}}`)
	if _, err := ParseRngMoe(doc, zzzAccount("1300000001")); !errors.Is(err, ErrNoGachaLogFound) {
		t.Fatalf("got %v", err)
	}
}

func TestParseRngMoe_WrongGameAccount(t *testing.T) {
	doc := []byte(`{"data":{"profiles":{"1":{"stores":{}}}}}`)
	if _, err := ParseRngMoe(doc, genshinAccount("901211014")); !errors.Is(err, ErrAccountGameMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestParseRngMoe_NonNumericGachaType(t *testing.T) {
	doc := []byte(`{"data":{"profiles":{"1":{"stores":{"0":{"items":{
		"exclusive": [{"id": "3", "item_id": "12001", "time": "2024-07-10 19:00:00", "rank_type": "2"}]
	}}}}}}}`)
	if _, err := ParseRngMoe(doc, zzzAccount("1300000001")); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("got %v", err)
	}
}
