package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryEntry is one persisted resolution.
type HistoryEntry struct {
	ID        int64
	Platform  string
	SourceURL string
	Title     string
	Artist    string
	DedupKey  string
	AudioURL  string
	CreatedAt time.Time
}

// HistoryStore persists resolved songs to SQLite so deduplication survives
// restarts and the CLI can list what the bot has delivered.
type HistoryStore struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS resolve_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	platform    TEXT NOT NULL,
	source_url  TEXT NOT NULL,
	title       TEXT NOT NULL,
	artist      TEXT NOT NULL DEFAULT '',
	dedup_key   TEXT NOT NULL,
	audio_url   TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_resolve_history_dedup_key ON resolve_history(dedup_key);
`

// NewHistoryStore opens (and migrates) the history database at path.
// Use ":memory:" for an ephemeral store.
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Close releases the underlying database handle.
func (hs *HistoryStore) Close() error {
	return hs.db.Close()
}

// Record appends one resolution to the history.
func (hs *HistoryStore) Record(ctx context.Context, entry HistoryEntry) error {
	_, err := hs.db.ExecContext(ctx,
		`INSERT INTO resolve_history (platform, source_url, title, artist, dedup_key, audio_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Platform, entry.SourceURL, entry.Title, entry.Artist, entry.DedupKey, entry.AudioURL,
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (hs *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := hs.db.QueryContext(ctx,
		`SELECT id, platform, source_url, title, artist, dedup_key, audio_url, created_at
		 FROM resolve_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Platform, &e.SourceURL, &e.Title, &e.Artist, &e.DedupKey, &e.AudioURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RecentKeys returns the dedup keys of up to limit recent entries, used to
// seed the DedupStore at startup.
func (hs *HistoryStore) RecentKeys(ctx context.Context, limit int) ([]string, error) {
	rows, err := hs.db.QueryContext(ctx,
		`SELECT dedup_key FROM resolve_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan history key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
