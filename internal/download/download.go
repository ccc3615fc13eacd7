// Package download lists finished torrents from the download client.
package download

import (
	"context"
	"sort"
	"time"
)

// Entry is a finished download as reported by the client.
type Entry struct {
	ID          string // Client identifier (torrent info hash)
	Name        string // Raw release name
	Path        string // Content path on disk
	SizeBytes   int64
	Seeding     bool
	Completed   bool
	CompletedAt time.Time
	Category    string
	Platform    string // Library platform the category maps to
}

// Ready reports whether the entry may be imported.
func (e *Entry) Ready() bool {
	return e.Completed && !e.Seeding
}

// Client is a download client that can list finished entries and forget them.
type Client interface {
	// ListCompleted returns completed, non-seeding entries, oldest first.
	ListCompleted(ctx context.Context) ([]*Entry, error)
	// Remove drops the entry from the client without deleting its files.
	Remove(ctx context.Context, id string) error
}

// SortOldestFirst orders entries by completion time, then name, then id.
func SortOldestFirst(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CompletedAt.Equal(b.CompletedAt) {
			return a.CompletedAt.Before(b.CompletedAt)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
