// Package catalog provides read-only item metadata from the per-game
// reference wikis. This file implements the HTTP client: one configured base
// URL per game, responses cached with a TTL, and concurrent fetches for the
// same game collapsed through singleflight so an import burst costs one
// round-trip.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/spf13/cast"
	"golang.org/x/sync/singleflight"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
)

// itemsResponse is the wiki item-list envelope (Ambr's layout; the Yatta and
// Hakushin mirrors answer the same shape on their item endpoints).
type itemsResponse struct {
	Data struct {
		Items map[string]struct {
			Rank int    `json:"rank"`
			Name string `json:"name"`
		} `json:"items"`
	} `json:"data"`
}

// HTTPClient fetches catalog maps over HTTP with per-game caching.
type HTTPClient struct {
	httpc    *http.Client
	baseURLs map[domain.Game]string

	rarities *expirable.LRU[domain.Game, map[int]int]
	names    *expirable.LRU[domain.Game, map[string]int]
	group    singleflight.Group
}

// NewHTTPClient constructs an HTTPClient for the given per-game base URLs.
// Cached maps expire after ttl; a zero ttl caches for the client's lifetime.
func NewHTTPClient(baseURLs map[domain.Game]string, timeout, ttl time.Duration) *HTTPClient {
	return &HTTPClient{
		httpc:    &http.Client{Timeout: timeout},
		baseURLs: baseURLs,
		rarities: expirable.NewLRU[domain.Game, map[int]int](len(baseURLs)+1, nil, ttl),
		names:    expirable.NewLRU[domain.Game, map[string]int](len(baseURLs)+1, nil, ttl),
	}
}

// RarityMap implements Client.
func (c *HTTPClient) RarityMap(ctx context.Context, game domain.Game) (map[int]int, error) {
	if m, ok := c.rarities.Get(game); ok {
		return m, nil
	}
	if err := c.fetch(ctx, game); err != nil {
		return nil, err
	}
	m, ok := c.rarities.Get(game)
	if !ok {
		return nil, ErrUnavailable
	}
	return m, nil
}

// ItemNameMap implements Client.
func (c *HTTPClient) ItemNameMap(ctx context.Context, game domain.Game) (map[string]int, error) {
	if m, ok := c.names.Get(game); ok {
		return m, nil
	}
	if err := c.fetch(ctx, game); err != nil {
		return nil, err
	}
	m, ok := c.names.Get(game)
	if !ok {
		return nil, ErrUnavailable
	}
	return m, nil
}

// fetch retrieves and caches both maps for a game. Concurrent callers for
// the same game share one request.
func (c *HTTPClient) fetch(ctx context.Context, game domain.Game) error {
	_, err, _ := c.group.Do(string(game), func() (any, error) {
		base, ok := c.baseURLs[game]
		if !ok || base == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedGame, game)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/items", nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		var parsed itemsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		rarities := make(map[int]int, len(parsed.Data.Items))
		names := make(map[string]int, len(parsed.Data.Items))
		for rawID, item := range parsed.Data.Items {
			id, err := cast.ToIntE(rawID)
			if err != nil {
				continue // non-numeric ids are wiki-internal entries
			}
			rarities[id] = item.Rank
			if item.Name != "" {
				names[item.Name] = id
			}
		}
		c.rarities.Add(game, rarities)
		c.names.Add(game, names)
		return nil, nil
	})
	return err
}
