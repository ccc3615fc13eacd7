package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/dustin/go-humanize"
)

const (
	removeAttempts   = 3
	removeRetryDelay = 2 * time.Second
)

// torrentAPI is the slice of the qBittorrent Web API the client uses.
type torrentAPI interface {
	LoginCtx(ctx context.Context) error
	GetTorrentsCtx(ctx context.Context, o qbt.TorrentFilterOptions) ([]qbt.Torrent, error)
	DeleteTorrentsCtx(ctx context.Context, hashes []string, deleteFiles bool) error
}

// QBittorrentConfig configures a QBittorrentClient.
type QBittorrentConfig struct {
	URL        string
	Username   string
	Password   string
	Categories map[string]string // qBittorrent category -> platform slug
	MaxPerRun  int               // Zero lists everything
	Timeout    time.Duration
}

// QBittorrentClient lists finished torrents from qBittorrent.
type QBittorrentClient struct {
	api        torrentAPI
	categories map[string]string
	maxPerRun  int
	retryDelay time.Duration
	log        *slog.Logger

	mu       sync.Mutex
	loggedIn bool
}

// NewQBittorrentClient creates a qBittorrent client. No connection is made
// until the first call.
func NewQBittorrentClient(cfg QBittorrentConfig, log *slog.Logger) *QBittorrentClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api := qbt.NewClient(qbt.Config{
		Host:     cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  int(timeout.Seconds()),
	})
	return newQBittorrentClient(api, cfg, log)
}

func newQBittorrentClient(api torrentAPI, cfg QBittorrentConfig, log *slog.Logger) *QBittorrentClient {
	if log == nil {
		log = slog.Default()
	}
	return &QBittorrentClient{
		api:        api,
		categories: cfg.Categories,
		maxPerRun:  cfg.MaxPerRun,
		retryDelay: removeRetryDelay,
		log:        log.With("component", "qbittorrent"),
	}
}

// ListCompleted returns finished, non-seeding torrents in the configured
// categories, oldest completion first.
func (c *QBittorrentClient) ListCompleted(ctx context.Context) ([]*Entry, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}

	var entries []*Entry
	for category, platform := range c.categories {
		torrents, err := c.api.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{
			Filter:   qbt.TorrentFilterCompleted,
			Category: category,
		})
		if err != nil {
			c.resetLogin()
			c.log.Debug("list torrents failed", "category", category, "error", err)
			return nil, fmt.Errorf("%w: list torrents: %v", ErrClientUnavailable, err)
		}

		for i := range torrents {
			e := toEntry(&torrents[i], platform)
			if !e.Ready() {
				continue
			}
			entries = append(entries, e)
		}
	}

	SortOldestFirst(entries)
	if c.maxPerRun > 0 && len(entries) > c.maxPerRun {
		c.log.Info("limiting torrents for this run", "found", len(entries), "limit", c.maxPerRun)
		entries = entries[:c.maxPerRun]
	}

	for _, e := range entries {
		c.log.Debug("torrent ready", "download_id", e.ID, "name", e.Name, "size", humanize.IBytes(uint64(max(e.SizeBytes, 0))))
	}
	return entries, nil
}

// Remove deletes the torrent from qBittorrent, keeping its files.
// Transient failures are retried.
func (c *QBittorrentClient) Remove(ctx context.Context, id string) error {
	var lastErr error
	for attempt := 1; attempt <= removeAttempts; attempt++ {
		if err := c.login(ctx); err != nil {
			lastErr = err
		} else if err := c.api.DeleteTorrentsCtx(ctx, []string{id}, false); err != nil {
			c.resetLogin()
			lastErr = fmt.Errorf("%w: delete torrent: %v", ErrClientUnavailable, err)
		} else {
			c.log.Info("torrent removed", "download_id", id)
			return nil
		}

		c.log.Warn("remove torrent failed", "download_id", id, "attempt", attempt, "error", lastErr)
		if attempt == removeAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return lastErr
}

func (c *QBittorrentClient) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}
	if err := c.api.LoginCtx(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: login: %v", ErrClientUnavailable, err)
	}
	c.loggedIn = true
	return nil
}

func (c *QBittorrentClient) resetLogin() {
	c.mu.Lock()
	c.loggedIn = false
	c.mu.Unlock()
}

func toEntry(t *qbt.Torrent, platform string) *Entry {
	path := t.ContentPath
	if path == "" {
		path = filepath.Join(t.SavePath, t.Name)
	}
	e := &Entry{
		ID:        t.Hash,
		Name:      t.Name,
		Path:      path,
		SizeBytes: t.Size,
		Seeding:   isSeeding(t.State),
		Completed: t.Progress >= 1 && isFinished(t.State),
		Category:  t.Category,
		Platform:  platform,
	}
	if t.CompletionOn > 0 {
		e.CompletedAt = time.Unix(t.CompletionOn, 0).UTC()
	}
	return e
}

// isSeeding reports states where the torrent is still serving uploads.
func isSeeding(state qbt.TorrentState) bool {
	switch state {
	case qbt.TorrentStateUploading,
		qbt.TorrentStateStalledUp,
		qbt.TorrentStateForcedUp,
		qbt.TorrentStateQueuedUp,
		qbt.TorrentStateCheckingUp:
		return true
	}
	return false
}

// isFinished reports upload-side states: the payload is complete on disk.
func isFinished(state qbt.TorrentState) bool {
	switch state {
	case qbt.TorrentStateStoppedUp, qbt.TorrentStatePausedUp:
		return true
	}
	return isSeeding(state)
}

var _ Client = (*QBittorrentClient)(nil)
