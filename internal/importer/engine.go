// Package importer reconciles finished downloads with the game library.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/gamarr/internal/download"
	"github.com/vmunix/gamarr/internal/library"
	"github.com/vmunix/gamarr/internal/metadata"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . DownloadClient,Library,Resolver,Scanner

// DownloadClient lists finished downloads and forgets imported ones.
type DownloadClient interface {
	ListCompleted(ctx context.Context) ([]*download.Entry, error)
	Remove(ctx context.Context, id string) error
}

// Library is the game library service.
type Library interface {
	Find(ctx context.Context, platform, title string) (*library.Entry, error)
	Create(ctx context.Context, e *library.Entry) (*library.Entry, error)
	UpdatePath(ctx context.Context, id int64, path string, sizeBytes int64) error
	UpdateHash(ctx context.Context, id int64, hash string, scannedAt time.Time) error
	List(ctx context.Context, platform string) ([]*library.Entry, error)
}

// Resolver maps raw release names to catalog candidates, best first.
type Resolver interface {
	Resolve(ctx context.Context, rawName, platform string) ([]metadata.Candidate, error)
}

// Scanner asks the library service to rescan platforms.
type Scanner interface {
	Scan(ctx context.Context, platforms []string, scanType library.ScanType) error
}

// Action is the decision taken for one download.
type Action string

const (
	ActionImport     Action = "import"
	ActionSkip       Action = "skip"
	ActionQuarantine Action = "quarantine"
)

// Decision records what a pass did with one download.
type Decision struct {
	DownloadID string
	Name       string
	Platform   string
	Action     Action
	TargetPath string
	Matched    *library.Entry
	Candidate  *metadata.Candidate
	Replaced   bool   // Import pointed an existing entry at a new copy
	Reason     string // Why the entry was skipped or quarantined
	Cause      error  // Quarantine cause, e.g. ErrNoMatch
	Err        error  // Processing failure; the entry is retried next pass
}

// PassResult summarizes one reconciliation pass.
type PassResult struct {
	PassID          string
	StartedAt       time.Time
	Duration        time.Duration
	Decisions       []*Decision
	Imported        int
	Replaced        int
	Skipped         int
	Quarantined     int
	Failed          int
	HashesRefreshed int
	Findings        []Finding // Audit results for entries that changed this pass
	Errors          []error
}

// Platform is a library platform the engine imports into.
type Platform struct {
	Slug         string
	LibraryDir   string
	MinSizeBytes int64  // Zero means no minimum
	Naming       string // Naming template, DefaultTemplate when empty
	RequireExe   bool   // Audit flags games without an .exe
}

// Config for the engine.
type Config struct {
	Platforms       []Platform
	RemoveDownloads bool // Remove finished downloads from the client after import or skip
	RequestTimeout  time.Duration
	ScanAfterImport bool
	Cleanup         CleanupConfig
	Audit           AuditConfig
}

// Deps are the engine's collaborators. Scanner and History are optional.
type Deps struct {
	Downloads DownloadClient
	Library   Library
	Resolver  Resolver
	Scanner   Scanner
	History   *HistoryStore
}

// Engine runs reconciliation passes.
type Engine struct {
	downloads DownloadClient
	library   Library
	resolver  Resolver
	scanner   Scanner
	history   *HistoryStore
	mover     *Mover
	cfg       Config
	platforms map[string]Platform
	renamers  map[string]*Renamer
	now       func() time.Time
	log       *slog.Logger
}

// New creates an engine.
func New(cfg Config, deps Deps, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		downloads: deps.Downloads,
		library:   deps.Library,
		resolver:  deps.Resolver,
		scanner:   deps.Scanner,
		history:   deps.History,
		mover:     NewMover(log),
		cfg:       cfg,
		platforms: make(map[string]Platform, len(cfg.Platforms)),
		renamers:  make(map[string]*Renamer, len(cfg.Platforms)),
		now:       time.Now,
		log:       log.With("component", "importer"),
	}
	for _, p := range cfg.Platforms {
		e.platforms[p.Slug] = p
		e.renamers[p.Slug] = NewRenamer(p.Naming)
	}
	return e
}

// RunPass processes every finished download once, refreshes stale hashes and
// tidies the library. Only a failure to list downloads aborts the pass; a
// cancelled context stops it between entries and returns the partial result
// with the context error.
func (e *Engine) RunPass(ctx context.Context) (*PassResult, error) {
	res := &PassResult{PassID: uuid.NewString(), StartedAt: e.now()}
	log := e.log.With("pass_id", res.PassID)
	defer func() { res.Duration = e.now().Sub(res.StartedAt) }()

	listCtx, cancel := e.callCtx(ctx)
	entries, err := e.downloads.ListCompleted(listCtx)
	cancel()
	if err != nil {
		log.Error("list completed downloads failed", "error", err)
		return nil, fmt.Errorf("list completed: %w", connectivity(err))
	}
	download.SortOldestFirst(entries)
	log.Info("pass started", "downloads", len(entries))

	fresh := make(map[int64]bool)
	imported := make(map[string]bool)
	replaced := make(map[string]bool)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			log.Warn("pass cancelled", "remaining", len(entries)-len(res.Decisions))
			return res, err
		}

		d := e.processEntry(ctx, log, entry)
		res.Decisions = append(res.Decisions, d)

		switch {
		case d.Err != nil:
			res.Failed++
			res.Errors = append(res.Errors, &EntryError{DownloadID: d.DownloadID, Name: d.Name, Action: d.Action, Err: d.Err})
		case d.Action == ActionImport && d.Replaced:
			res.Replaced++
			replaced[d.Platform] = true
		case d.Action == ActionImport:
			res.Imported++
			imported[d.Platform] = true
		case d.Action == ActionSkip:
			res.Skipped++
		case d.Action == ActionQuarantine:
			res.Quarantined++
		}
		if d.Action == ActionImport && d.Matched != nil {
			fresh[d.Matched.ID] = true
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	swept := e.sweep(ctx, log, fresh)
	res.HashesRefreshed = swept.refreshed
	res.Findings = swept.findings
	res.Errors = append(res.Errors, swept.errs...)

	if res.Imported+res.Replaced > 0 {
		e.tidy(log, imported, replaced)
		e.notify(ctx, log, imported, replaced)
	}

	log.Info("pass complete",
		"imported", res.Imported,
		"replaced", res.Replaced,
		"skipped", res.Skipped,
		"quarantined", res.Quarantined,
		"failed", res.Failed,
		"hashes_refreshed", res.HashesRefreshed,
		"flagged", len(res.Findings))
	return res, nil
}

// processEntry decides and carries out the action for one download.
func (e *Engine) processEntry(ctx context.Context, log *slog.Logger, entry *download.Entry) *Decision {
	d := &Decision{DownloadID: entry.ID, Name: entry.Name, Platform: entry.Platform, Action: ActionImport}
	log = log.With("download_id", entry.ID, "name", entry.Name)

	platform, ok := e.platforms[entry.Platform]
	if !ok {
		return e.quarantine(log, d, fmt.Errorf("%w: %q", ErrUnknownPlatform, entry.Platform))
	}

	if e.history != nil {
		if done := e.checkLedger(ctx, log, entry, d); done {
			return d
		}
	}

	if platform.MinSizeBytes > 0 && entry.SizeBytes < platform.MinSizeBytes {
		return e.quarantine(log, d, fmt.Errorf("%w: %d < %d bytes", ErrBelowMinimumSize, entry.SizeBytes, platform.MinSizeBytes))
	}

	callCtx, cancel := e.callCtx(ctx)
	candidates, err := e.resolver.Resolve(callCtx, entry.Name, entry.Platform)
	cancel()
	if err != nil {
		return e.fail(log, d, fmt.Errorf("resolve: %w", err))
	}
	if len(candidates) == 0 {
		return e.quarantine(log, d, ErrNoMatch)
	}
	best := candidates[0]
	d.Candidate = &best
	log = log.With("title", best.Title, "score", best.Score)

	existing, err := e.find(ctx, entry.Platform, best.Title)
	if err != nil {
		return e.fail(log, d, err)
	}
	d.Matched = existing

	if existing != nil && libraryCopyMatches(existing, entry) {
		d.Action = ActionSkip
		d.Reason = "already in library"
		log.Info("already imported, skipping", "library_id", existing.ID, "path", existing.FilePath)
		e.removeDownload(ctx, log, entry)
		return d
	}

	return e.importEntry(ctx, log, entry, platform, best, existing, d)
}

// checkLedger skips downloads the history already records as imported while
// the library copy still matches them. Returns true when the decision is final.
func (e *Engine) checkLedger(ctx context.Context, log *slog.Logger, entry *download.Entry, d *Decision) bool {
	prev, err := e.history.LastImport(ctx, entry.ID, entry.Path)
	if err != nil {
		log.Warn("history lookup failed", "error", err)
		return false
	}
	if prev == nil {
		return false
	}

	existing, err := e.find(ctx, prev.Platform, prev.Title)
	if err != nil {
		e.fail(log, d, err)
		return true
	}
	d.Matched = existing

	_, statErr := os.Stat(entry.Path)
	sourceGone := errors.Is(statErr, os.ErrNotExist)
	matches := existing != nil && libraryCopyMatches(existing, entry)

	switch {
	case prev.Event == EventSourceKept && matches && !sourceGone:
		d.TargetPath = prev.DestPath
		e.fail(log, d, fmt.Errorf("%w: source %s still present after verified copy to %s", ErrIntegrity, entry.Path, prev.DestPath))
		return true
	case matches:
		d.Action = ActionSkip
		d.Reason = "already imported"
		log.Info("already imported, skipping", "library_id", existing.ID, "imported_at", prev.CreatedAt)
		e.removeDownload(ctx, log, entry)
		return true
	case sourceGone:
		d.Action = ActionSkip
		d.Reason = "source already imported"
		if existing == nil {
			log.Warn("imported download no longer in library and source is gone", "dest", prev.DestPath)
			return true
		}
		log.Info("source already imported, skipping", "library_id", existing.ID, "dest", prev.DestPath)
		e.removeDownload(ctx, log, entry)
		return true
	}
	return false
}

// libraryCopyMatches reports whether the library file has the download's size.
func libraryCopyMatches(le *library.Entry, entry *download.Entry) bool {
	if le.FilePath == "" {
		return false
	}
	size, err := PathSize(le.FilePath)
	return err == nil && size == entry.SizeBytes
}

// importEntry moves the download into the library and records it.
func (e *Engine) importEntry(ctx context.Context, log *slog.Logger, entry *download.Entry, platform Platform, best metadata.Candidate, existing *library.Entry, d *Decision) *Decision {
	info, err := os.Stat(entry.Path)
	if err != nil {
		return e.fail(log, d, fmt.Errorf("stat source: %w", err))
	}

	var ext string
	if !info.IsDir() {
		ext = filepath.Ext(entry.Path)
	}
	rel := e.renamers[platform.Slug].Path(Naming{Title: best.Title, Platform: platform.Slug, ExternalID: best.ExternalID}, ext)
	target := filepath.Join(platform.LibraryDir, rel)
	if err := ValidatePath(target, platform.LibraryDir); err != nil {
		return e.quarantine(log, d, err)
	}
	if target, err = uniqueTarget(target, ext); err != nil {
		if errors.Is(err, ErrCollision) {
			return e.quarantine(log, d, err)
		}
		return e.fail(log, d, err)
	}
	d.TargetPath = target

	moved, moveErr := e.mover.Move(entry.Path, target)
	if moved == nil {
		return e.fail(log, d, fmt.Errorf("move: %w", moveErr))
	}
	log.Info("moved", "src", entry.Path, "dest", target, "copied", moved.Copied)

	// The move is done: finish the bookkeeping even if the pass is cancelled.
	postCtx := context.WithoutCancel(ctx)
	now := e.now()

	var libErr error
	if existing == nil {
		callCtx, cancel := e.callCtx(postCtx)
		created, err := e.library.Create(callCtx, &library.Entry{
			Platform:      platform.Slug,
			Title:         best.Title,
			FilePath:      target,
			ContentHash:   moved.Digest.Hash,
			SizeBytes:     moved.Digest.Size,
			LastScannedAt: now,
		})
		cancel()
		libErr = err
		d.Matched = created
		if created == nil {
			d.Matched = &library.Entry{Platform: platform.Slug, Title: best.Title, FilePath: target}
		}
	} else {
		callCtx, cancel := e.callCtx(postCtx)
		libErr = e.library.UpdatePath(callCtx, existing.ID, target, moved.Digest.Size)
		cancel()
		d.Replaced = true
	}

	if libErr != nil {
		if moveErr == nil {
			if err := e.mover.Rollback(entry.Path, target); err != nil {
				log.Error("rollback failed, library copy left in place", "dest", target, "error", err)
			}
		}
		return e.fail(log, d, fmt.Errorf("record in library: %w", connectivity(libErr)))
	}

	if d.Replaced {
		callCtx, cancel := e.callCtx(postCtx)
		if err := e.library.UpdateHash(callCtx, existing.ID, moved.Digest.Hash, now); err != nil {
			log.Warn("hash update after replacement failed", "library_id", existing.ID, "error", err)
		}
		cancel()
		e.deleteReplaced(log, platform, existing.FilePath, target)
	}

	e.record(postCtx, log, entry, platform, best, d, moveErr != nil)

	if moveErr != nil {
		// Verified copy in the library, but the source could not be removed
		return e.fail(log, d, moveErr)
	}

	log.Info("imported", "library_id", d.Matched.ID, "dest", target, "replaced", d.Replaced)
	e.removeDownload(postCtx, log, entry)
	return d
}

func (e *Engine) record(ctx context.Context, log *slog.Logger, entry *download.Entry, platform Platform, best metadata.Candidate, d *Decision, sourceKept bool) {
	if e.history == nil {
		return
	}
	event := EventImported
	switch {
	case sourceKept:
		event = EventSourceKept
	case d.Replaced:
		event = EventReplaced
	}
	data, err := json.Marshal(map[string]any{
		"score":       best.Score,
		"external_id": best.ExternalID,
		"size_bytes":  entry.SizeBytes,
	})
	if err != nil {
		log.Error("failed to encode history data", "error", err)
		return
	}
	err = e.history.Add(ctx, &HistoryEntry{
		DownloadID: entry.ID,
		SourcePath: entry.Path,
		Platform:   platform.Slug,
		Title:      best.Title,
		LibraryID:  d.Matched.ID,
		DestPath:   d.TargetPath,
		Event:      event,
		Data:       string(data),
	})
	if err != nil {
		log.Error("failed to record history", "error", err)
	}
}

// deleteReplaced removes the previous copy of a replaced entry when enabled.
func (e *Engine) deleteReplaced(log *slog.Logger, platform Platform, oldPath, newPath string) {
	if !e.cfg.Cleanup.DeleteReplaced || oldPath == "" || oldPath == newPath {
		return
	}
	if err := ValidatePath(oldPath, platform.LibraryDir); err != nil {
		log.Warn("replaced copy outside library root, keeping", "path", oldPath)
		return
	}
	if err := os.RemoveAll(oldPath); err != nil {
		log.Warn("failed to delete replaced copy", "path", oldPath, "error", err)
		return
	}
	log.Info("deleted replaced copy", "path", oldPath)
}

// find looks up a library entry, mapping ErrNotFound to nil.
func (e *Engine) find(ctx context.Context, platform, title string) (*library.Entry, error) {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	existing, err := e.library.Find(callCtx, platform, title)
	if errors.Is(err, library.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find in library: %w", connectivity(err))
	}
	return existing, nil
}

func (e *Engine) removeDownload(ctx context.Context, log *slog.Logger, entry *download.Entry) {
	if !e.cfg.RemoveDownloads {
		log.Debug("keeping download in client")
		return
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	if err := e.downloads.Remove(callCtx, entry.ID); err != nil {
		log.Warn("failed to remove download from client", "error", err)
	}
}

func (e *Engine) quarantine(log *slog.Logger, d *Decision, cause error) *Decision {
	d.Action = ActionQuarantine
	d.Cause = cause
	d.Reason = cause.Error()
	log.Warn("quarantined", "reason", d.Reason)
	return d
}

func (e *Engine) fail(log *slog.Logger, d *Decision, err error) *Decision {
	d.Err = err
	log.Error("entry failed", "action", d.Action, "error", err)
	return d
}

func (e *Engine) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.RequestTimeout)
}

// platformSlugs returns the configured platforms in a stable order.
func (e *Engine) platformSlugs() []string {
	slugs := make([]string, 0, len(e.platforms))
	for slug := range e.platforms {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
