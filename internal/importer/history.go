// internal/importer/history.go
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event types for history records.
const (
	EventImported   = "imported"
	EventReplaced   = "replaced"
	EventSourceKept = "source_kept" // Verified copy; the download source could not be removed
)

// HistoryEntry represents a history record.
type HistoryEntry struct {
	ID         int64
	DownloadID string
	SourcePath string
	Platform   string
	Title      string
	LibraryID  int64
	DestPath   string
	Event      string
	Data       string // JSON blob
	CreatedAt  time.Time
}

// HistoryFilter specifies criteria for listing history.
type HistoryFilter struct {
	DownloadID string
	Platform   string
	Event      string
	Limit      int
}

// HistoryStore persists the import ledger.
type HistoryStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewHistoryStore creates a history store.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db, now: time.Now}
}

// Add inserts a history entry. An imported event for a source path that was
// already imported replaces the earlier record, so a source path maps to at
// most one import.
func (s *HistoryStore) Add(ctx context.Context, h *HistoryEntry) error {
	if h.Data == "" {
		h.Data = "{}"
	}
	now := s.now().UTC()

	query := `
		INSERT INTO history (download_id, source_path, platform, title, library_id, dest_path, event, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if h.Event == EventImported {
		query += `
		ON CONFLICT(source_path) WHERE event = 'imported' DO UPDATE SET
			download_id = excluded.download_id,
			platform = excluded.platform,
			title = excluded.title,
			library_id = excluded.library_id,
			dest_path = excluded.dest_path,
			data = excluded.data,
			created_at = excluded.created_at`
	}
	query += ` RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		h.DownloadID, h.SourcePath, h.Platform, h.Title, h.LibraryID, h.DestPath, h.Event, h.Data, now,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	h.ID = id
	h.CreatedAt = now
	return nil
}

// LastImport returns the most recent import, replacement or kept-source copy
// recorded for the download or its source path. Returns nil, nil when there is none.
func (s *HistoryStore) LastImport(ctx context.Context, downloadID, sourcePath string) (*HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, download_id, source_path, platform, title, COALESCE(library_id, 0), dest_path, event, data, created_at
		FROM history
		WHERE event IN (?, ?, ?) AND (download_id = ? OR source_path = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		EventImported, EventReplaced, EventSourceKept, downloadID, sourcePath,
	)

	h, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup history: %w", err)
	}
	return h, nil
}

// List returns history entries matching the filter.
// Results are ordered by most recent first.
func (s *HistoryStore) List(ctx context.Context, f HistoryFilter) ([]*HistoryEntry, error) {
	var conditions []string
	var args []any

	if f.DownloadID != "" {
		conditions = append(conditions, "download_id = ?")
		args = append(args, f.DownloadID)
	}
	if f.Platform != "" {
		conditions = append(conditions, "platform = ?")
		args = append(args, f.Platform)
	}
	if f.Event != "" {
		conditions = append(conditions, "event = ?")
		args = append(args, f.Event)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, download_id, source_path, platform, title, COALESCE(library_id, 0), dest_path, event, data, created_at
		FROM history ` + whereClause + ` ORDER BY created_at DESC, id DESC`

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*HistoryEntry
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(r rowScanner) (*HistoryEntry, error) {
	h := &HistoryEntry{}
	err := r.Scan(&h.ID, &h.DownloadID, &h.SourcePath, &h.Platform, &h.Title, &h.LibraryID, &h.DestPath, &h.Event, &h.Data, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}
