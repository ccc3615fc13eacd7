package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/gamarr/pkg/release"
)

const (
	searchLimit = 50
	listPage    = 500
)

// RommConfig configures a RommClient.
type RommConfig struct {
	URL          string
	Username     string
	Password     string
	WebsocketURL string // Defaults to URL with a ws scheme
	Timeout      time.Duration
	ScanTimeout  time.Duration // Upper bound on waiting for a scan to finish
}

// RommClient talks to a RomM server over its REST API.
type RommClient struct {
	baseURL      string
	username     string
	password     string
	websocketURL string
	scanTimeout  time.Duration
	httpClient   *http.Client
	log          *slog.Logger

	mu        sync.Mutex
	platforms map[string]int64 // slug -> platform id
}

// NewRommClient creates a RomM client.
func NewRommClient(cfg RommConfig, log *slog.Logger) *RommClient {
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	scanTimeout := cfg.ScanTimeout
	if scanTimeout <= 0 {
		scanTimeout = 2 * time.Hour
	}
	base := strings.TrimSuffix(cfg.URL, "/")
	ws := strings.TrimSuffix(cfg.WebsocketURL, "/")
	if ws == "" {
		ws = websocketBase(base)
	}
	return &RommClient{
		baseURL:      base,
		username:     cfg.Username,
		password:     cfg.Password,
		websocketURL: ws,
		scanTimeout:  scanTimeout,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log.With("component", "romm"),
	}
}

// websocketBase swaps an http(s) scheme for ws(s).
func websocketBase(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// rom is the RomM wire representation of a library entry.
type rom struct {
	ID            int64      `json:"id"`
	PlatformID    int64      `json:"platform_id"`
	PlatformSlug  string     `json:"platform_slug,omitempty"`
	Name          string     `json:"name"`
	FilePath      string     `json:"file_path"`
	SizeBytes     int64      `json:"fs_size_bytes"`
	ContentHash   string     `json:"content_hash,omitempty"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`
}

type platform struct {
	ID     int64  `json:"id"`
	Slug   string `json:"slug"`
	FSSlug string `json:"fs_slug"`
	Name   string `json:"name"`
}

func (r *rom) toEntry(platform string) *Entry {
	e := &Entry{
		ID:          r.ID,
		Platform:    platform,
		Title:       r.Name,
		FilePath:    r.FilePath,
		ContentHash: r.ContentHash,
		SizeBytes:   r.SizeBytes,
	}
	if r.LastScannedAt != nil {
		e.LastScannedAt = r.LastScannedAt.UTC()
	}
	return e
}

// Find returns the entry whose title matches title after normalization.
func (c *RommClient) Find(ctx context.Context, platform, title string) (*Entry, error) {
	pid, err := c.platformID(ctx, platform)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"platform_id": {strconv.FormatInt(pid, 10)},
		"search_term": {title},
		"limit":       {strconv.Itoa(searchLimit)},
	}
	roms, err := c.getRoms(ctx, params)
	if err != nil {
		return nil, err
	}

	want := release.CleanTitle(title)
	for i := range roms {
		if release.CleanTitle(roms[i].Name) == want {
			return roms[i].toEntry(platform), nil
		}
	}
	return nil, fmt.Errorf("find %s/%q: %w", platform, title, ErrNotFound)
}

// Create registers a new rom.
func (c *RommClient) Create(ctx context.Context, e *Entry) (*Entry, error) {
	pid, err := c.platformID(ctx, e.Platform)
	if err != nil {
		return nil, err
	}

	body := rom{
		PlatformID:  pid,
		Name:        e.Title,
		FilePath:    e.FilePath,
		SizeBytes:   e.SizeBytes,
		ContentHash: e.ContentHash,
	}
	if !e.LastScannedAt.IsZero() {
		t := e.LastScannedAt.UTC()
		body.LastScannedAt = &t
	}

	var created rom
	if err := c.do(ctx, http.MethodPost, "/api/roms", nil, body, &created); err != nil {
		return nil, fmt.Errorf("create rom %q: %w", e.Title, err)
	}

	out := *e
	out.ID = created.ID
	c.log.Info("rom created", "id", created.ID, "platform", e.Platform, "title", e.Title)
	return &out, nil
}

// UpdatePath points a rom at a new file.
func (c *RommClient) UpdatePath(ctx context.Context, id int64, path string, sizeBytes int64) error {
	body := map[string]any{"file_path": path, "fs_size_bytes": sizeBytes}
	if err := c.do(ctx, http.MethodPut, "/api/roms/"+strconv.FormatInt(id, 10), nil, body, nil); err != nil {
		return fmt.Errorf("update rom %d path: %w", id, err)
	}
	c.log.Info("rom path updated", "id", id, "path", path)
	return nil
}

// UpdateHash stores a recomputed content hash.
func (c *RommClient) UpdateHash(ctx context.Context, id int64, hash string, scannedAt time.Time) error {
	body := map[string]any{"content_hash": hash, "last_scanned_at": scannedAt.UTC()}
	if err := c.do(ctx, http.MethodPut, "/api/roms/"+strconv.FormatInt(id, 10), nil, body, nil); err != nil {
		return fmt.Errorf("update rom %d hash: %w", id, err)
	}
	c.log.Debug("rom hash updated", "id", id)
	return nil
}

// List returns every rom on platform, following pagination.
func (c *RommClient) List(ctx context.Context, platform string) ([]*Entry, error) {
	pid, err := c.platformID(ctx, platform)
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	for offset := 0; ; offset += listPage {
		params := url.Values{
			"platform_id": {strconv.FormatInt(pid, 10)},
			"limit":       {strconv.Itoa(listPage)},
			"offset":      {strconv.Itoa(offset)},
		}
		roms, err := c.getRoms(ctx, params)
		if err != nil {
			return nil, err
		}
		for i := range roms {
			entries = append(entries, roms[i].toEntry(platform))
		}
		if len(roms) < listPage {
			break
		}
	}
	return entries, nil
}

// platformID resolves a platform slug to its RomM id, caching the table.
func (c *RommClient) platformID(ctx context.Context, slug string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.platforms[slug]; ok {
		return id, nil
	}

	var platforms []platform
	if err := c.do(ctx, http.MethodGet, "/api/platforms", nil, nil, &platforms); err != nil {
		return 0, fmt.Errorf("list platforms: %w", err)
	}

	c.platforms = make(map[string]int64, len(platforms)*2)
	for _, p := range platforms {
		if p.FSSlug != "" {
			c.platforms[p.FSSlug] = p.ID
		}
		if _, ok := c.platforms[p.Slug]; !ok && p.Slug != "" {
			c.platforms[p.Slug] = p.ID
		}
	}

	id, ok := c.platforms[slug]
	if !ok {
		return 0, fmt.Errorf("platform %s: %w", slug, ErrNotFound)
	}
	return id, nil
}

// getRoms fetches /api/roms, accepting a bare array or a paginated envelope.
func (c *RommClient) getRoms(ctx context.Context, params url.Values) ([]rom, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/roms", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("search roms: %w", err)
	}

	var roms []rom
	if err := json.Unmarshal(raw, &roms); err == nil {
		return roms, nil
	}
	var page struct {
		Items []rom `json:"items"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode roms: %w", err)
	}
	return page.Items, nil
}

// do performs an authenticated request against the RomM API.
func (c *RommClient) do(ctx context.Context, method, path string, params url.Values, body, result any) error {
	start := time.Now()
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.log.Debug("api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	c.log.Debug("api request complete", "method", method, "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

var _ Service = (*RommClient)(nil)
