// internal/importer/cleanup.go
package importer

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultExtrasPatterns name bonus archives that are not part of the game.
var DefaultExtrasPatterns = []string{
	"soundtrack", "ost", "flac", "wav", "mp3", "artbook", "booklet", "wallpaper",
}

// textNoteSuffix marks release notes dropped next to installers.
const textNoteSuffix = "gog-games.to.txt"

// CleanupConfig selects post-import tidying.
type CleanupConfig struct {
	RemoveExtras    bool
	ExtrasPatterns  []string
	RemoveTextFiles bool
	RemoveEmptyDirs bool
	DeleteReplaced  bool // Remove the previous copy after a replacement import
}

// TidyResult counts what a tidy removed.
type TidyResult struct {
	Extras    int
	TextFiles int
	EmptyDirs int
	Bytes     int64
}

// Tidy cleans the game folders directly under root.
func Tidy(root string, cfg CleanupConfig, log *slog.Logger) TidyResult {
	var res TidyResult
	folders, err := os.ReadDir(root)
	if err != nil {
		log.Warn("failed to read library root", "path", root, "error", err)
		return res
	}

	patterns := cfg.ExtrasPatterns
	if len(patterns) == 0 {
		patterns = DefaultExtrasPatterns
	}

	for _, folder := range folders {
		if !folder.IsDir() {
			continue
		}
		dir := filepath.Join(root, folder.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			log.Warn("failed to read game folder", "path", dir, "error", err)
			continue
		}

		remaining := len(files)
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			name := f.Name()
			var kind string
			switch {
			case cfg.RemoveTextFiles && strings.HasSuffix(name, textNoteSuffix):
				kind = "text"
			case cfg.RemoveExtras && isExtrasArchive(name, patterns):
				kind = "extras"
			default:
				continue
			}

			path := filepath.Join(dir, name)
			var size int64
			if info, err := f.Info(); err == nil {
				size = info.Size()
			}
			if err := os.Remove(path); err != nil {
				log.Error("failed to remove file", "path", path, "error", err)
				continue
			}
			remaining--
			res.Bytes += size
			if kind == "text" {
				res.TextFiles++
			} else {
				res.Extras++
			}
			log.Info("removed "+kind+" file", "path", filepath.Join(folder.Name(), name), "size", humanize.IBytes(uint64(max(size, 0))))
		}

		if cfg.RemoveEmptyDirs && remaining == 0 {
			if err := os.Remove(dir); err != nil {
				log.Error("failed to remove empty directory", "path", dir, "error", err)
				continue
			}
			res.EmptyDirs++
			log.Info("removed empty directory", "path", dir)
		}
	}
	return res
}

// isExtrasArchive reports a .zip whose name contains any pattern.
func isExtrasArchive(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".zip") {
		return false
	}
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
