package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/gamarr/internal/library"
)

var allChecks = AuditConfig{Empty: true, FragmentedBytes: DefaultFragmentedBytes, DangerousFiles: true}

func issues(findings []Finding) []Issue {
	var out []Issue
	for _, f := range findings {
		out = append(out, f.Issue)
	}
	return out
}

func TestAudit_HealthyGame(t *testing.T) {
	game := filepath.Join(t.TempDir(), "Awesome Game")
	writeFile(t, filepath.Join(game, "setup_awesome_game.exe"), strings.Repeat("x", 2048))

	findings, err := Audit(game, allChecks, true)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAudit_Empty(t *testing.T) {
	game := filepath.Join(t.TempDir(), "Empty Game")
	writeFile(t, filepath.Join(game, "setup.exe"), "")

	findings, err := Audit(game, allChecks, false)
	require.NoError(t, err)
	assert.Equal(t, []Issue{IssueEmpty}, issues(findings), "empty is not also reported as fragmented")
	assert.Equal(t, game, findings[0].Path)
}

func TestAudit_Fragmented(t *testing.T) {
	game := filepath.Join(t.TempDir(), "Tiny Game")
	writeFile(t, filepath.Join(game, "setup.exe"), strings.Repeat("x", 1100))

	findings, err := Audit(game, allChecks, false)
	require.NoError(t, err)
	assert.Equal(t, []Issue{IssueFragmented}, issues(findings))
	assert.Equal(t, "1100 bytes", findings[0].Detail)

	findings, err = Audit(game, AuditConfig{Empty: true}, false)
	require.NoError(t, err)
	assert.Empty(t, findings, "fragmented check disabled")
}

func TestAudit_MissingExe(t *testing.T) {
	game := filepath.Join(t.TempDir(), "Linux Only")
	writeFile(t, filepath.Join(game, "game.sh.bin"), strings.Repeat("x", 4096))

	findings, err := Audit(game, AuditConfig{}, true)
	require.NoError(t, err)
	assert.Equal(t, []Issue{IssueMissingExe}, issues(findings))

	findings, err = Audit(game, AuditConfig{}, false)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAudit_DangerousFiles(t *testing.T) {
	game := filepath.Join(t.TempDir(), "Suspicious Game")
	writeFile(t, filepath.Join(game, "setup.exe"), strings.Repeat("x", 4096))
	writeFile(t, filepath.Join(game, "run.BAT"), "@echo off")
	writeFile(t, filepath.Join(game, "extras", "visit.url"), "[InternetShortcut]")

	findings, err := Audit(game, allChecks, true)
	require.NoError(t, err)
	require.Equal(t, []Issue{IssueDangerousFile}, issues(findings))
	assert.Equal(t, "extras/visit.url, run.BAT", findings[0].Detail)
}

func TestAudit_DangerousFilesListIsCapped(t *testing.T) {
	game := filepath.Join(t.TempDir(), "Noisy Game")
	writeFile(t, filepath.Join(game, "setup.exe"), strings.Repeat("x", 4096))
	for _, name := range []string{"a.bat", "b.bat", "c.bat", "d.bat", "e.bat", "f.bat", "g.bat"} {
		writeFile(t, filepath.Join(game, name), "rem")
	}

	findings, err := Audit(game, allChecks, false)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "a.bat, b.bat, c.bat, d.bat, e.bat and 2 more", findings[0].Detail)
}

func TestAudit_MissingPath(t *testing.T) {
	_, err := Audit(filepath.Join(t.TempDir(), "gone"), allChecks, false)
	assert.Error(t, err)
}

func TestEngine_RunPass_AuditsChangedEntries(t *testing.T) {
	f := newFixture(t)
	f.cfg.Audit = allChecks
	f.cfg.Platforms[0].RequireExe = true

	changed := filepath.Join(f.libraryDir, "Tiny Game")
	writeFile(t, filepath.Join(changed, "readme.bin"), "tiny")
	unchanged := filepath.Join(f.libraryDir, "Old Tiny Game")
	writeFile(t, filepath.Join(unchanged, "readme.bin"), "tiny")

	f.expectList()
	f.library.EXPECT().List(gomock.Any(), "pc").Return([]*library.Entry{
		{ID: 1, Platform: "pc", Title: "Tiny Game", FilePath: changed, LastScannedAt: time.Now().Add(-time.Hour)},
		{ID: 2, Platform: "pc", Title: "Old Tiny Game", FilePath: unchanged, LastScannedAt: time.Now().Add(time.Hour)},
	}, nil)
	f.library.EXPECT().UpdateHash(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.engine().RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.HashesRefreshed)
	require.Len(t, res.Findings, 2, "only the entry that changed is audited")
	assert.Equal(t, []Issue{IssueFragmented, IssueMissingExe}, issues(res.Findings))
	for _, finding := range res.Findings {
		assert.Equal(t, int64(1), finding.LibraryID)
		assert.Equal(t, "Tiny Game", finding.Title)
		assert.Equal(t, "pc", finding.Platform)
	}
}
