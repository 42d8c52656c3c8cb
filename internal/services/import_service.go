// Package services – ImportService
//
// This file implements ImportService, the orchestrator of a gacha-log
// import. One invocation walks a fixed pipeline: validate the file extension
// for the declared source, dispatch to that source's parser, resolve missing
// rarities through the reference catalog, stable-sort by wish id, bulk-insert
// and renumber, then report how many records were actually new.
//
// Failure at any step surfaces the specific error to the caller without
// running the renumbering step, so the derived columns stay consistent with
// whatever data was actually committed (possibly stale, never torn).
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// account and source identifiers. Outcome counters live in metrics.go.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/catalog"
	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/parse"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GachaRepo defines the repository contract required by ImportService.
// Implementations are responsible for persistence of the gacha history log.
type GachaRepo interface {
	// BulkCreateRecords appends a batch, letting the unique constraint
	// reject duplicates row-by-row.
	BulkCreateRecords(ctx context.Context, db *gorm.DB, records []domain.GachaRecord) error

	// CountRecords returns the total history size of an account.
	CountRecords(ctx context.Context, db *gorm.DB, accountID string) (int64, error)

	// RenumberRecords recomputes num and num_since_last for an account.
	RenumberRecords(ctx context.Context, db *gorm.DB, accountID string) error
}

// ImportResult reports one finished import.
type ImportResult struct {
	// Total is the account's history size after the import.
	Total int64 `json:"total"`
	// NewRecords is how many records this import actually added, measured as
	// count-after minus count-before (duplicates are rejected at the
	// constraint level, so the delta is exact).
	NewRecords int64 `json:"new_records"`
	// Source echoes the declared import source.
	Source parse.Source `json:"source"`
}

// ImportService coordinates parsing, rarity resolution, persistence, and
// derived-column maintenance for gacha-log uploads.
type ImportService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the gacha history repository used by this service.
	Repo GachaRepo
	// Catalog supplies rarity and item-name maps from the reference wikis.
	Catalog catalog.Client

	// locks serialize insert+renumber per account. Two simultaneous imports
	// for one account could otherwise each recompute against a partial
	// intermediate state; the recompute is idempotent over the final row
	// set, so serializing per account is all the coordination needed.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewImportService constructs an ImportService.
func NewImportService(db *gorm.DB, r GachaRepo, cat catalog.Client) *ImportService {
	return &ImportService{
		DB:      db,
		Repo:    r,
		Catalog: cat,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Import runs the full pipeline for one uploaded gacha-log file and returns
// the imported-record delta.
func (s *ImportService) Import(ctx context.Context, account *domain.GameAccount, source parse.Source, filename string, data []byte) (*ImportResult, error) {
	tr := otel.Tracer("services/ImportService")
	ctx, span := tr.Start(ctx, "Import",
		trace.WithAttributes(
			attribute.String("account.id", account.ID),
			attribute.String("game", account.Game.String()),
			attribute.String("source", string(source)),
		),
	)
	defer span.End()

	result, err := s.runImport(ctx, account, source, filename, data)
	if err != nil {
		importFailures.WithLabelValues(string(source), failureKind(err)).Inc()
		return nil, err
	}

	importedRecords.WithLabelValues(string(source), account.Game.String()).Add(float64(result.NewRecords))
	return result, nil
}

func (s *ImportService) runImport(ctx context.Context, account *domain.GameAccount, source parse.Source, filename string, data []byte) (*ImportResult, error) {
	if !source.Valid() {
		return nil, ErrUnknownSource
	}
	if !strings.EqualFold(filepath.Ext(filename), source.Extension()) {
		return nil, fmt.Errorf("%w: %s expects %s", parse.ErrInvalidFileExtension, source, source.Extension())
	}

	records, err := s.parseUpload(ctx, account, source, data)
	if err != nil {
		return nil, err
	}

	if parse.MissingRarity(records) {
		if records, err = s.resolveRarities(ctx, account.Game, records); err != nil {
			return nil, err
		}
	}

	parse.SortRecords(records)

	rows := make([]domain.GachaRecord, len(records))
	for i, r := range records {
		rows[i] = domain.GachaRecord{
			AccountID:  account.ID,
			Game:       account.Game,
			WishID:     r.WishID,
			Rarity:     r.Rarity,
			ItemID:     r.ItemID,
			BannerType: r.BannerType,
			Time:       r.Time,
		}
	}

	// Serialize insert+renumber per account (see locks).
	lock := s.accountLock(account.ID)
	lock.Lock()
	defer lock.Unlock()

	before, err := s.Repo.CountRecords(ctx, s.DB, account.ID)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		// Lenient sources (StarDB without a matching UID entry) legitimately
		// yield nothing; there is nothing to insert or renumber.
		return &ImportResult{Total: before, NewRecords: 0, Source: source}, nil
	}

	if err := s.Repo.BulkCreateRecords(ctx, s.DB, rows); err != nil {
		return nil, err
	}
	if err := s.Repo.RenumberRecords(ctx, s.DB, account.ID); err != nil {
		return nil, err
	}

	after, err := s.Repo.CountRecords(ctx, s.DB, account.ID)
	if err != nil {
		return nil, err
	}

	added := after - before
	if skipped := int64(len(rows)) - added; skipped > 0 {
		duplicateRecords.WithLabelValues(string(source), account.Game.String()).Add(float64(skipped))
	}
	return &ImportResult{Total: after, NewRecords: added, Source: source}, nil
}

// parseUpload dispatches to the declared source's parser.
func (s *ImportService) parseUpload(ctx context.Context, account *domain.GameAccount, source parse.Source, data []byte) ([]parse.Record, error) {
	switch source {
	case SourceUIGF:
		return parse.ParseUIGF(ctx, data, account, s.itemNameLookup(account.Game))
	case SourceSRGF:
		return parse.ParseSRGF(data, account)
	case SourceStarRailStation:
		return parse.ParseStarRailStationCSV(data, account)
	case SourceStarDB:
		return parse.ParseStarDB(data, account)
	case SourceZZZRngMoe:
		return parse.ParseRngMoe(data, account)
	case SourceStarward:
		return parse.ParseStarward(data, account)
	default:
		return nil, ErrUnknownSource
	}
}

// itemNameLookup adapts the catalog client to the lazy lookup the UIGF
// parser takes, so the catalog round-trip only happens when a file actually
// needs name resolution.
func (s *ImportService) itemNameLookup(game domain.Game) parse.ItemNameLookup {
	return func(ctx context.Context) (map[string]int, error) {
		return s.Catalog.ItemNameMap(ctx, game)
	}
}

// resolveRarities fills every record lacking a rarity from the catalog's
// rarity map. One fetch covers the whole batch; a lookup miss aborts the
// import because the catalog is assumed complete for released items.
func (s *ImportService) resolveRarities(ctx context.Context, game domain.Game, records []parse.Record) ([]parse.Record, error) {
	rarities, err := s.Catalog.RarityMap(ctx, game)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Rarity != 0 {
			continue
		}
		rarity, ok := rarities[records[i].ItemID]
		if !ok || rarity == 0 {
			return nil, fmt.Errorf("%w: item %d", ErrItemNotInCatalog, records[i].ItemID)
		}
		records[i].Rarity = rarity
	}
	return records, nil
}

// accountLock returns the per-account mutex, creating it on first use.
func (s *ImportService) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[accountID] = lock
	}
	return lock
}

// failureKind maps an import error to a low-cardinality metric label.
func failureKind(err error) string {
	switch {
	case errors.Is(err, parse.ErrInvalidFileExtension):
		return "extension"
	case errors.Is(err, parse.ErrAccountGameMismatch):
		return "game_mismatch"
	case errors.Is(err, parse.ErrUIDMismatch):
		return "uid_mismatch"
	case errors.Is(err, parse.ErrNoGachaLogFound):
		return "no_log"
	case errors.Is(err, parse.ErrUnresolvableItemName):
		return "item_name"
	case errors.Is(err, parse.ErrUnrecognizedSchemaVersion):
		return "schema"
	case errors.Is(err, parse.ErrMalformedFile):
		return "malformed"
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, catalog.ErrUnsupportedGame):
		return "catalog"
	case errors.Is(err, ErrItemNotInCatalog):
		return "item_missing"
	case errors.Is(err, ErrUnknownSource):
		return "source"
	default:
		return "internal"
	}
}

// Re-exported source constants so handlers can validate without importing
// parse directly.
const (
	SourceUIGF            = parse.SourceUIGF
	SourceSRGF            = parse.SourceSRGF
	SourceStarRailStation = parse.SourceStarRailStation
	SourceStarDB          = parse.SourceStarDB
	SourceZZZRngMoe       = parse.SourceZZZRngMoe
	SourceStarward        = parse.SourceStarward
)
