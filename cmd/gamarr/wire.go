package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vmunix/gamarr/internal/config"
	"github.com/vmunix/gamarr/internal/download"
	"github.com/vmunix/gamarr/internal/importer"
	"github.com/vmunix/gamarr/internal/library"
	"github.com/vmunix/gamarr/internal/logging"
	"github.com/vmunix/gamarr/internal/metadata"
	"github.com/vmunix/gamarr/internal/migrations"
	"github.com/vmunix/gamarr/internal/server"
)

// app holds what every command builds from the config file.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sql.DB
	closers []io.Closer
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	path, err := config.Discover(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	a := &app{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	db, err := openDatabase(ctx, cfg.Database.Path)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.db = db
	a.closers = append([]io.Closer{db}, a.closers...)

	log.Debug("config loaded", "path", path, "platforms", len(cfg.Platforms))
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *app) catalog() *metadata.Catalog {
	urls := make(map[string]string, len(a.cfg.Platforms))
	for _, p := range a.cfg.Platforms {
		urls[p.Slug] = a.cfg.Metadata.CatalogURL
		if p.CatalogURL != "" {
			urls[p.Slug] = p.CatalogURL
		}
	}
	client := metadata.NewCatalogClient(a.cfg.Timeouts.Request, a.log)
	return metadata.NewCatalog(client, metadata.NewCache(a.db), urls, a.cfg.Metadata.CacheTTL, a.log)
}

func (a *app) resolver(source metadata.Source) *metadata.Resolver {
	return metadata.NewResolver(source, a.cfg.Metadata.MinConfidence, a.log)
}

func (a *app) history() *importer.HistoryStore {
	return importer.NewHistoryStore(a.db)
}

func (a *app) engine() *importer.Engine {
	cfg := a.cfg

	categories := make(map[string]string, len(cfg.Platforms))
	platforms := make([]importer.Platform, 0, len(cfg.Platforms))
	for _, p := range cfg.Platforms {
		categories[p.Category] = p.Slug
		platforms = append(platforms, importer.Platform{
			Slug:         p.Slug,
			LibraryDir:   p.LibraryDir,
			MinSizeBytes: p.MinSizeBytes,
			Naming:       p.Naming,
			RequireExe:   p.RequireExe,
		})
	}

	qbit := download.NewQBittorrentClient(download.QBittorrentConfig{
		URL:        cfg.QBittorrent.URL,
		Username:   cfg.QBittorrent.Username,
		Password:   cfg.QBittorrent.Password,
		Categories: categories,
		MaxPerRun:  cfg.QBittorrent.MaxPerRun,
		Timeout:    cfg.Timeouts.Request,
	}, a.log)

	romm := library.NewRommClient(library.RommConfig{
		URL:          cfg.Romm.URL,
		Username:     cfg.Romm.Username,
		Password:     cfg.Romm.Password,
		WebsocketURL: cfg.Romm.WebsocketURL,
		Timeout:      cfg.Timeouts.Request,
		ScanTimeout:  cfg.Timeouts.Scan,
	}, a.log)

	var scanner importer.Scanner
	if cfg.Romm.ScanAfterImport {
		scanner = romm
	}

	return importer.New(importer.Config{
		Platforms:       platforms,
		RemoveDownloads: cfg.QBittorrent.RemoveDownloads(),
		RequestTimeout:  cfg.Timeouts.Request,
		ScanAfterImport: cfg.Romm.ScanAfterImport,
		Cleanup: importer.CleanupConfig{
			RemoveExtras:    cfg.Cleanup.RemoveExtras,
			ExtrasPatterns:  cfg.Cleanup.ExtrasPatterns,
			RemoveTextFiles: cfg.Cleanup.RemoveTextFiles,
			RemoveEmptyDirs: cfg.Cleanup.RemoveEmptyDirs,
			DeleteReplaced:  cfg.Cleanup.DeleteReplaced,
		},
		Audit: importer.AuditConfig{
			Empty:           cfg.Audit.Empty,
			FragmentedBytes: cfg.Audit.FragmentedBytes,
			DangerousFiles:  cfg.Audit.DangerousFiles,
		},
	}, importer.Deps{
		Downloads: qbit,
		Library:   romm,
		Resolver:  a.resolver(a.catalog()),
		Scanner:   scanner,
		History:   a.history(),
	}, a.log)
}

func (a *app) runner() *server.Runner {
	lockPath := a.cfg.Schedule.LockFile
	if lockPath == "" {
		lockPath = filepath.Join(filepath.Dir(a.cfg.Database.Path), "gamarr.lock")
	}
	return server.NewRunner(a.engine(), server.Config{
		Interval:  a.cfg.Schedule.Interval,
		OnStartup: a.cfg.Schedule.OnStartup,
		LockPath:  lockPath,
	}, a.log)
}
