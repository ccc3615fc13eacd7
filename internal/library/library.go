// Package library talks to the game library service that owns library entries.
package library

import (
	"context"
	"time"
)

// Entry is a game as recorded by the library service.
type Entry struct {
	ID            int64
	Platform      string // Platform slug
	Title         string
	FilePath      string
	ContentHash   string // Hex SHA-256
	SizeBytes     int64
	LastScannedAt time.Time
}

// ScanType selects how much work a library scan does.
type ScanType string

const (
	// ScanQuick picks up new folders only.
	ScanQuick ScanType = "quick"
	// ScanHashes recomputes hashes for existing entries.
	ScanHashes ScanType = "hashes"
)

// Service is a game library service.
type Service interface {
	// Find returns the entry with the given canonical title on platform.
	// Returns ErrNotFound when there is none.
	Find(ctx context.Context, platform, title string) (*Entry, error)
	// Create records a new entry and returns it with its assigned ID.
	Create(ctx context.Context, e *Entry) (*Entry, error)
	// UpdatePath points an existing entry at a new file.
	UpdatePath(ctx context.Context, id int64, path string, sizeBytes int64) error
	// UpdateHash stores a recomputed content hash and the time it was taken.
	UpdateHash(ctx context.Context, id int64, hash string, scannedAt time.Time) error
	// List returns every entry on platform.
	List(ctx context.Context, platform string) ([]*Entry, error)
}

// Scanner asks the library service to rescan platforms.
type Scanner interface {
	Scan(ctx context.Context, platforms []string, scanType ScanType) error
}
