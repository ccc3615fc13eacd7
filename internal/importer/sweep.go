package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/vmunix/gamarr/internal/library"
)

// sweepResult is what a sweep changed and found.
type sweepResult struct {
	refreshed int
	findings  []Finding
	errs      []error
}

// sweep rehashes library entries whose files changed since their last scan
// and audits every entry that changed. Entries in fresh were written by this
// pass and are already current.
func (e *Engine) sweep(ctx context.Context, log *slog.Logger, fresh map[int64]bool) sweepResult {
	var res sweepResult
	for _, slug := range e.platformSlugs() {
		callCtx, cancel := e.callCtx(ctx)
		entries, err := e.library.List(callCtx, slug)
		cancel()
		if err != nil {
			log.Warn("list library entries failed", "platform", slug, "error", err)
			res.errs = append(res.errs, fmt.Errorf("list %s: %w", slug, connectivity(err)))
			continue
		}

		for _, le := range entries {
			if ctx.Err() != nil {
				return res
			}
			if le.FilePath == "" {
				continue
			}
			changed := fresh[le.ID]
			if !changed {
				ok, err := e.refreshHash(ctx, log, le)
				if err != nil {
					res.errs = append(res.errs, err)
					continue
				}
				if ok {
					res.refreshed++
				}
				changed = ok
			}
			if changed {
				res.findings = append(res.findings, e.audit(log, slug, le)...)
			}
		}
	}
	if res.refreshed > 0 {
		log.Info("refreshed content hashes", "count", res.refreshed)
	}
	if len(res.findings) > 0 {
		log.Warn("library audit found problems", "count", len(res.findings))
	}
	return res
}

// audit runs the configured checks on one changed entry.
func (e *Engine) audit(log *slog.Logger, slug string, le *library.Entry) []Finding {
	requireExe := e.platforms[slug].RequireExe
	if !e.cfg.Audit.enabled() && !requireExe {
		return nil
	}
	findings, err := Audit(le.FilePath, e.cfg.Audit, requireExe)
	if err != nil {
		log.Warn("library audit failed", "library_id", le.ID, "error", err)
		return nil
	}
	for i := range findings {
		findings[i].LibraryID = le.ID
		findings[i].Platform = slug
		findings[i].Title = le.Title
		log.Warn("library entry flagged", "library_id", le.ID, "title", le.Title,
			"path", le.FilePath, "issue", findings[i].Issue, "detail", findings[i].Detail)
	}
	return findings
}

func (e *Engine) refreshHash(ctx context.Context, log *slog.Logger, le *library.Entry) (bool, error) {
	modified, err := NewestModTime(le.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("library file missing", "library_id", le.ID, "path", le.FilePath)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", le.FilePath, err)
	}
	if !modified.After(le.LastScannedAt) {
		return false, nil
	}

	digest, err := HashPath(le.FilePath)
	if err != nil {
		return false, fmt.Errorf("hash %s: %w", le.FilePath, err)
	}

	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	if err := e.library.UpdateHash(callCtx, le.ID, digest.Hash, e.now()); err != nil {
		return false, fmt.Errorf("update hash %d: %w", le.ID, connectivity(err))
	}
	log.Debug("hash refreshed", "library_id", le.ID, "title", le.Title, "size", humanize.IBytes(uint64(digest.Size)))
	return true, nil
}

// tidy removes clutter from the roots of platforms that received imports.
func (e *Engine) tidy(log *slog.Logger, platformSets ...map[string]bool) {
	c := e.cfg.Cleanup
	if !c.RemoveExtras && !c.RemoveTextFiles && !c.RemoveEmptyDirs {
		return
	}
	done := make(map[string]bool)
	for _, set := range platformSets {
		for slug := range set {
			p, ok := e.platforms[slug]
			if !ok || done[p.LibraryDir] {
				continue
			}
			done[p.LibraryDir] = true
			Tidy(p.LibraryDir, c, log)
		}
	}
}

// notify asks the library to pick up new entries with a quick scan and
// replaced entries with a hash scan. Failures are logged only.
func (e *Engine) notify(ctx context.Context, log *slog.Logger, imported, replaced map[string]bool) {
	if e.scanner == nil || !e.cfg.ScanAfterImport {
		return
	}
	scan := func(set map[string]bool, scanType library.ScanType) {
		var platforms []string
		for _, slug := range e.platformSlugs() {
			if set[slug] {
				platforms = append(platforms, slug)
			}
		}
		if len(platforms) == 0 {
			return
		}
		if err := e.scanner.Scan(ctx, platforms, scanType); err != nil {
			log.Warn("library scan failed", "type", scanType, "platforms", platforms, "error", err)
			return
		}
		log.Info("library scan finished", "type", scanType, "platforms", platforms)
	}
	scan(imported, library.ScanQuick)
	scan(replaced, library.ScanHashes)
}
