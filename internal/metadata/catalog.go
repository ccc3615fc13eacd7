package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// DefaultCatalogTTL is how long a fetched catalog is trusted.
const DefaultCatalogTTL = 24 * time.Hour

const keyPrefixCatalog = "catalog:"

// Game is one catalog record.
type Game struct {
	ID    json.Number `json:"id"`
	Slug  string      `json:"slug"`
	Title string      `json:"title"`
}

// ExternalID returns the catalog identifier, preferring the slug.
func (g Game) ExternalID() string {
	if g.Slug != "" {
		return g.Slug
	}
	return g.ID.String()
}

// Source provides the catalog of known games for a platform.
type Source interface {
	Games(ctx context.Context, platform string) ([]Game, error)
}

// CatalogClient fetches a JSON game catalog over HTTP.
type CatalogClient struct {
	httpClient *http.Client
	log        *slog.Logger
}

// NewCatalogClient creates a catalog client with the given request timeout.
func NewCatalogClient(timeout time.Duration, log *slog.Logger) *CatalogClient {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CatalogClient{
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("component", "catalog"),
	}
}

// Fetch downloads the raw catalog document from url.
// The body must decode as a JSON array of games or an object holding one
// under "items" or "games".
func (c *CatalogClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("catalog request failed", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if _, err := decodeGames(buf.Bytes()); err != nil {
		return nil, err
	}

	c.log.Debug("catalog fetched", "url", url, "bytes", buf.Len(), "duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func decodeGames(data []byte) ([]Game, error) {
	var games []Game
	if err := json.Unmarshal(data, &games); err == nil {
		return games, nil
	}

	var wrapped struct {
		Items []Game `json:"items"`
		Games []Game `json:"games"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(wrapped.Items) > 0 {
		return wrapped.Items, nil
	}
	return wrapped.Games, nil
}

// Catalog serves per-platform game catalogs backed by the SQLite cache.
// A fetched catalog is kept in memory for the TTL; when a refresh fails the
// last cached copy is used even if expired.
type Catalog struct {
	client *CatalogClient
	cache  *Cache
	urls   map[string]string // platform slug -> catalog URL
	ttl    time.Duration
	log    *slog.Logger

	mu     sync.Mutex
	loaded map[string]loadedCatalog
}

type loadedCatalog struct {
	games    []Game
	loadedAt time.Time
}

// NewCatalog creates a cached catalog for the given platform URLs.
func NewCatalog(client *CatalogClient, cache *Cache, urls map[string]string, ttl time.Duration, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &Catalog{
		client: client,
		cache:  cache,
		urls:   urls,
		ttl:    ttl,
		log:    log.With("component", "catalog"),
		loaded: make(map[string]loadedCatalog),
	}
}

// Games returns the catalog for platform.
func (c *Catalog) Games(ctx context.Context, platform string) ([]Game, error) {
	url, ok := c.urls[platform]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if lc, ok := c.loaded[platform]; ok && c.cache.now().Sub(lc.loadedAt) < c.ttl {
		return lc.games, nil
	}

	key := keyPrefixCatalog + platform
	if data, ok := c.cache.Get(ctx, key); ok {
		if games, err := decodeGames(data); err == nil {
			c.log.Debug("catalog cache hit", "platform", platform, "games", len(games))
			return c.remember(platform, games), nil
		}
		c.log.Warn("failed to decode cached catalog", "platform", platform)
	}

	data, err := c.client.Fetch(ctx, url)
	if err != nil {
		if stale, ok := c.cache.GetStale(ctx, key); ok {
			if games, derr := decodeGames(stale); derr == nil {
				c.log.Warn("catalog refresh failed, using stale copy", "platform", platform, "error", err)
				return c.remember(platform, games), nil
			}
		}
		return nil, fmt.Errorf("fetch catalog %s: %w", platform, err)
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("failed to cache catalog", "platform", platform, "error", err)
	}

	games, err := decodeGames(data)
	if err != nil {
		return nil, err
	}
	c.log.Info("catalog refreshed", "platform", platform, "games", len(games))
	return c.remember(platform, games), nil
}

// Refresh drops the in-memory and cached copy so the next Games call refetches.
func (c *Catalog) Refresh(ctx context.Context, platform string) error {
	c.mu.Lock()
	delete(c.loaded, platform)
	c.mu.Unlock()
	return c.cache.Delete(ctx, keyPrefixCatalog+platform)
}

func (c *Catalog) remember(platform string, games []Game) []Game {
	c.loaded[platform] = loadedCatalog{games: games, loadedAt: c.cache.now()}
	return games
}

// StaticSource serves fixed catalogs, keyed by platform.
type StaticSource map[string][]Game

// Games returns the fixed catalog for platform.
func (s StaticSource) Games(_ context.Context, platform string) ([]Game, error) {
	games, ok := s[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	return games, nil
}

// GameID builds a numeric catalog id for StaticSource entries.
func GameID(id int64) json.Number {
	return json.Number(strconv.FormatInt(id, 10))
}

var (
	_ Source = (*Catalog)(nil)
	_ Source = StaticSource(nil)
)
