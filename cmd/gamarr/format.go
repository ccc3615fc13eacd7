package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/vmunix/gamarr/internal/importer"
)

func formatSize(bytes int64) string {
	if bytes < 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return humanize.IBytes(uint64(bytes))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// passView is the printable form of a pass result.
type passView struct {
	PassID          string         `json:"pass_id"`
	Duration        string         `json:"duration"`
	Imported        int            `json:"imported"`
	Replaced        int            `json:"replaced"`
	Skipped         int            `json:"skipped"`
	Quarantined     int            `json:"quarantined"`
	Failed          int            `json:"failed"`
	HashesRefreshed int            `json:"hashes_refreshed"`
	Decisions       []decisionView `json:"decisions"`
	Findings        []findingView  `json:"findings,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
}

type findingView struct {
	LibraryID int64  `json:"library_id"`
	Platform  string `json:"platform"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	Issue     string `json:"issue"`
	Detail    string `json:"detail,omitempty"`
}

type decisionView struct {
	DownloadID string  `json:"download_id"`
	Name       string  `json:"name"`
	Action     string  `json:"action"`
	Title      string  `json:"title,omitempty"`
	Score      float64 `json:"score,omitempty"`
	TargetPath string  `json:"target_path,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func newPassView(res *importer.PassResult) passView {
	v := passView{
		PassID:          res.PassID,
		Duration:        res.Duration.String(),
		Imported:        res.Imported,
		Replaced:        res.Replaced,
		Skipped:         res.Skipped,
		Quarantined:     res.Quarantined,
		Failed:          res.Failed,
		HashesRefreshed: res.HashesRefreshed,
		Decisions:       make([]decisionView, 0, len(res.Decisions)),
	}
	for _, d := range res.Decisions {
		dv := decisionView{
			DownloadID: d.DownloadID,
			Name:       d.Name,
			Action:     string(d.Action),
			TargetPath: d.TargetPath,
			Reason:     d.Reason,
		}
		if d.Candidate != nil {
			dv.Title = d.Candidate.Title
			dv.Score = d.Candidate.Score
		}
		if d.Err != nil {
			dv.Action = "failed"
			dv.Error = d.Err.Error()
		}
		v.Decisions = append(v.Decisions, dv)
	}
	for _, f := range res.Findings {
		v.Findings = append(v.Findings, findingView{
			LibraryID: f.LibraryID,
			Platform:  f.Platform,
			Title:     f.Title,
			Path:      f.Path,
			Issue:     string(f.Issue),
			Detail:    f.Detail,
		})
	}
	for _, err := range res.Errors {
		v.Errors = append(v.Errors, err.Error())
	}
	return v
}

func printPassResult(out io.Writer, res *importer.PassResult, asJSON bool) error {
	v := newPassView(res)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	for _, d := range v.Decisions {
		detail := d.TargetPath
		switch {
		case d.Error != "":
			detail = d.Error
		case d.Action != string(importer.ActionImport):
			detail = d.Reason
		}
		fmt.Fprintf(out, "%-10s  %-45s  %s\n", d.Action, truncate(d.Name, 45), detail)
	}
	if len(v.Decisions) > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Pass %s: %d imported, %d replaced, %d skipped, %d quarantined, %d failed, %d hashes refreshed (%s)\n",
		v.PassID, v.Imported, v.Replaced, v.Skipped, v.Quarantined, v.Failed, v.HashesRefreshed, v.Duration)
	for _, f := range v.Findings {
		fmt.Fprintf(out, "  flagged: %s (%s) %s: %s\n", f.Title, f.Platform, f.Issue, f.Detail)
	}
	for _, e := range v.Errors {
		fmt.Fprintf(out, "  error: %s\n", e)
	}
	return nil
}
