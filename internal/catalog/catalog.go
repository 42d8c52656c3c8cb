// Package catalog provides read-only item metadata from the per-game
// reference wikis (Ambr for Genshin, Yatta for Star Rail, Hakushin for ZZZ).
// The import pipeline uses it to fill rarities missing from sources like
// StarDB and to resolve item names to ids for old UIGF files.
//
// The catalogs are assumed authoritative and complete for every released
// item, so a lookup miss is a hard failure upstream, not something to skip.
package catalog

import (
	"context"
	"errors"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// ErrUnavailable is returned when a reference wiki cannot be reached or
// answers with a non-success status. Import errors wrap it so the handler
// layer can distinguish "their file is bad" from "our upstream is down".
var ErrUnavailable = errors.New("reference catalog unavailable")

// ErrUnsupportedGame is returned when no reference wiki is configured for the
// requested game.
var ErrUnsupportedGame = errors.New("no reference catalog for game")

// Client provides the two catalog maps the import pipeline needs.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Client interface {
	// RarityMap returns item id -> rarity for every gacha item of the game.
	RarityMap(ctx context.Context, game domain.Game) (map[int]int, error)
	// ItemNameMap returns item name -> item id. Only Genshin needs this
	// (legacy UIGF files identify items by localized name).
	ItemNameMap(ctx context.Context, game domain.Game) (map[string]int, error)
}
