// Package services – ExportService
//
// This file implements the UIGF v4.0 export: the full history of one account
// read back in wish-id order and serialized into the unified interchange
// shape. Stored pull times are normalized instants, so the envelope carries a
// fixed UTC+8 timezone and times are rendered in that offset. The export is
// pure and order-preserving; importing an exported document into the same
// account reproduces the original row set (the derived columns are
// recomputed, as always).
package services

import (
	"context"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/parse"
)

// uigfVersion is the interchange version this export emits.
const uigfVersion = "v4.0"

// exportTimezone is the fixed offset of the export envelope; stored times
// are rendered in it.
const exportTimezone = 8

// HistoryReader is the repository contract required by ExportService.
type HistoryReader interface {
	// ListRecords returns an account's full history ordered by wish_id asc.
	ListRecords(ctx context.Context, db *gorm.DB, accountID string) ([]domain.GachaRecord, error)
}

// ExportService serializes gacha history into the UIGF v4.0 interchange form.
type ExportService struct {
	// DB is the GORM handle used for reads.
	DB *gorm.DB
	// Repo is the history reader used by this service.
	Repo HistoryReader
	// App and AppVersion identify this exporter in the info envelope.
	App        string
	AppVersion string
}

// uigfExportItem is the per-record UIGF v4 shape. Both gacha_type and
// uigf_gacha_type carry the stored banner type; the distinction the format
// draws for Genshin's shared-pity banners is already collapsed at import.
type uigfExportItem struct {
	ID            string `json:"id"`
	GachaType     string `json:"gacha_type"`
	UIGFGachaType string `json:"uigf_gacha_type"`
	ItemID        string `json:"item_id"`
	Time          string `json:"time"`
	RankType      string `json:"rank_type"`
}

// uigfExportEntry is the per-UID block inside a game array.
type uigfExportEntry struct {
	UID      string           `json:"uid"`
	Timezone int              `json:"timezone"`
	List     []uigfExportItem `json:"list"`
}

// uigfExportInfo is the document envelope.
type uigfExportInfo struct {
	ExportApp        string `json:"export_app"`
	ExportAppVersion string `json:"export_app_version"`
	ExportTimestamp  int64  `json:"export_timestamp"`
	Version          string `json:"version"`
}

// gameExportKey maps a game to its UIGF v4 array key. Games without an
// interchange codename cannot be exported.
func gameExportKey(game domain.Game) (string, bool) {
	switch game {
	case domain.GameGenshin:
		return "hk4e", true
	case domain.GameStarRail:
		return "hkrpg", true
	case domain.GameZZZ:
		return "nap", true
	}
	return "", false
}

// ExportUIGF reads the account's full history and returns it as a UIGF v4.0
// JSON document.
func (s *ExportService) ExportUIGF(ctx context.Context, account *domain.GameAccount) ([]byte, error) {
	tr := otel.Tracer("services/ExportService")
	ctx, span := tr.Start(ctx, "ExportUIGF",
		trace.WithAttributes(
			attribute.String("account.id", account.ID),
			attribute.String("game", account.Game.String()),
		),
	)
	defer span.End()

	key, ok := gameExportKey(account.Game)
	if !ok {
		return nil, ErrInvalidGame
	}

	records, err := s.Repo.ListRecords(ctx, s.DB, account.ID)
	if err != nil {
		return nil, err
	}

	loc := parse.FixedOffset(exportTimezone)
	items := make([]uigfExportItem, len(records))
	for i, r := range records {
		banner := strconv.Itoa(r.BannerType)
		items[i] = uigfExportItem{
			ID:            strconv.FormatInt(r.WishID, 10),
			GachaType:     banner,
			UIGFGachaType: banner,
			ItemID:        strconv.Itoa(r.ItemID),
			Time:          r.Time.In(loc).Format("2006-01-02 15:04:05"),
			RankType:      strconv.Itoa(r.Rarity),
		}
	}

	doc := map[string]any{
		"info": uigfExportInfo{
			ExportApp:        s.App,
			ExportAppVersion: s.AppVersion,
			ExportTimestamp:  time.Now().Unix(),
			Version:          uigfVersion,
		},
		key: []uigfExportEntry{
			{
				UID:      account.UID,
				Timezone: exportTimezone,
				List:     items,
			},
		},
	}
	return json.Marshal(doc)
}
