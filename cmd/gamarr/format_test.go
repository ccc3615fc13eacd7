package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/gamarr/internal/importer"
	"github.com/vmunix/gamarr/internal/metadata"
)

func samplePass() *importer.PassResult {
	return &importer.PassResult{
		PassID:   "pass-1",
		Duration: 1500 * time.Millisecond,
		Decisions: []*importer.Decision{
			{
				DownloadID: "abc",
				Name:       "Awesome.Game.GOG-RELEASEGRP",
				Action:     importer.ActionImport,
				TargetPath: "/library/pc/Awesome Game",
				Candidate:  &metadata.Candidate{Title: "Awesome Game", Score: 0.97},
			},
			{
				DownloadID: "def",
				Name:       "Unknown.Thing",
				Action:     importer.ActionQuarantine,
				Reason:     "no catalog match",
			},
			{
				DownloadID: "ghi",
				Name:       "Broken.Game",
				Action:     importer.ActionImport,
				Err:        errors.New("copy failed"),
			},
		},
		Imported:        1,
		Quarantined:     1,
		Failed:          1,
		HashesRefreshed: 2,
		Findings: []importer.Finding{
			{LibraryID: 7, Platform: "pc", Title: "Tiny Game", Path: "/library/pc/Tiny Game", Issue: importer.IssueFragmented, Detail: "512 bytes"},
		},
		Errors: []error{errors.New("sweep: list library: boom")},
	}
}

func TestPrintPassResult_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printPassResult(&buf, samplePass(), false))

	out := buf.String()
	assert.Contains(t, out, "/library/pc/Awesome Game")
	assert.Contains(t, out, "no catalog match")
	assert.Contains(t, out, "copy failed")
	assert.Contains(t, out, "Pass pass-1: 1 imported, 0 replaced, 0 skipped, 1 quarantined, 1 failed, 2 hashes refreshed (1.5s)")
	assert.Contains(t, out, "flagged: Tiny Game (pc) fragmented: 512 bytes")
	assert.Contains(t, out, "error: sweep: list library: boom")
}

func TestPrintPassResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printPassResult(&buf, samplePass(), true))

	var v passView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "pass-1", v.PassID)
	require.Len(t, v.Decisions, 3)
	assert.Equal(t, "Awesome Game", v.Decisions[0].Title)
	assert.Equal(t, "quarantine", v.Decisions[1].Action)
	assert.Equal(t, "failed", v.Decisions[2].Action)
	assert.Equal(t, "copy failed", v.Decisions[2].Error)
	assert.Equal(t, []string{"sweep: list library: boom"}, v.Errors)
	require.Len(t, v.Findings, 1)
	assert.Equal(t, "fragmented", v.Findings[0].Issue)
	assert.Equal(t, int64(7), v.Findings[0].LibraryID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "1.0 MiB", formatSize(1<<20))
	assert.Equal(t, "0 B", formatSize(0))
}
