package importer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultFragmentedBytes is the size of an archive or image whose payload is
// missing. No complete game is this small.
const DefaultFragmentedBytes = 1100

// AuditConfig selects report-only library checks. Findings are logged and
// returned with the pass; nothing is deleted.
type AuditConfig struct {
	Empty           bool  // Entries with no bytes on disk
	FragmentedBytes int64 // Entries at or below this size; zero disables
	DangerousFiles  bool  // Entries holding scripts, shortcuts or installers of other kinds
}

func (c AuditConfig) enabled() bool {
	return c.Empty || c.FragmentedBytes > 0 || c.DangerousFiles
}

// Issue names an audit check.
type Issue string

const (
	IssueEmpty         Issue = "empty"
	IssueFragmented    Issue = "fragmented"
	IssueMissingExe    Issue = "missing_exe"
	IssueDangerousFile Issue = "dangerous_file"
)

// Finding is one audit result for a library entry.
type Finding struct {
	LibraryID int64
	Platform  string
	Title     string
	Path      string
	Issue     Issue
	Detail    string
}

// dangerousExts never belong in a GOG release.
var dangerousExts = map[string]bool{
	".bat": true, ".cmd": true, ".url": true, ".m3u": true, ".pdf": true,
	".js": true, ".iso": true, ".ics": true, ".msi": true, ".msix": true,
	".msu": true, ".one": true, ".cpl": true, ".cab": true, ".gadget": true,
	".iqy": true, ".msp": true, ".appx": true, ".jse": true, ".scr": true,
	".reg": true, ".ws": true, ".wse": true, ".wsf": true,
}

// maxListedFiles caps the file names quoted in a finding.
const maxListedFiles = 5

// Audit inspects the game at path. requireExe reports a game with no .exe
// file, for platforms whose releases are Windows installers.
func Audit(path string, cfg AuditConfig, requireExe bool) ([]Finding, error) {
	var (
		size      int64
		hasExe    bool
		dangerous []string
	)
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()

		ext := strings.ToLower(filepath.Ext(d.Name()))
		switch {
		case ext == ".exe":
			hasExe = true
		case dangerousExts[ext]:
			rel, err := filepath.Rel(path, p)
			if err != nil || rel == "." {
				rel = d.Name()
			}
			dangerous = append(dangerous, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", path, err)
	}

	var findings []Finding
	add := func(issue Issue, detail string) {
		findings = append(findings, Finding{Path: path, Issue: issue, Detail: detail})
	}

	switch {
	case size == 0:
		if cfg.Empty {
			add(IssueEmpty, "no file content")
		}
	case cfg.FragmentedBytes > 0 && size <= cfg.FragmentedBytes:
		add(IssueFragmented, fmt.Sprintf("%d bytes", size))
	}
	if requireExe && !hasExe {
		add(IssueMissingExe, "no .exe file")
	}
	if cfg.DangerousFiles && len(dangerous) > 0 {
		sort.Strings(dangerous)
		detail := strings.Join(dangerous[:min(len(dangerous), maxListedFiles)], ", ")
		if len(dangerous) > maxListedFiles {
			detail += fmt.Sprintf(" and %d more", len(dangerous)-maxListedFiles)
		}
		add(IssueDangerousFile, detail)
	}
	return findings, nil
}
