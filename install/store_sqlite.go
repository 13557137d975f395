package install

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteMarkerSchema = `
CREATE TABLE IF NOT EXISTS install_markers (
	tool TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	installed_at TEXT NOT NULL
);`

const (
	defaultSQLiteStoreDir = ".ociaction"
	defaultSQLiteStoreDB  = "ociaction.db"
)

// SQLiteMarkerStoreConfig configures the SQLite-backed marker store.
type SQLiteMarkerStoreConfig struct {
	DSN string
}

// SQLiteMarkerStore persists markers for any number of tools in SQLite.
type SQLiteMarkerStore struct {
	db *sql.DB
}

// DefaultSQLitePath returns ~/.ociaction/ociaction.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("install: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultSQLiteStoreDir, defaultSQLiteStoreDB), nil
}

// NewSQLiteMarkerStore opens (or creates) a SQLite marker store.
func NewSQLiteMarkerStore(cfg SQLiteMarkerStoreConfig) (*SQLiteMarkerStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("install: sqlite store dsn is required")
	}
	if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("install: create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("install: sqlite store open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("install: sqlite store set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteMarkerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("install: sqlite store create schema: %w", err)
	}
	return &SQLiteMarkerStore{db: db}, nil
}

// Get returns the marker for tool.
func (s *SQLiteMarkerStore) Get(ctx context.Context, tool string) (Marker, bool, error) {
	if err := ctx.Err(); err != nil {
		return Marker{}, false, err
	}
	if s == nil || s.db == nil {
		return Marker{}, false, errors.New("install: sqlite store is nil")
	}
	clean := strings.TrimSpace(tool)
	if clean == "" {
		return Marker{}, false, errEmptyTool
	}

	var (
		token       string
		installedAt string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT token, installed_at
FROM install_markers
WHERE tool = ?`, clean).Scan(&token, &installedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Marker{}, false, nil
		}
		return Marker{}, false, fmt.Errorf("install: sqlite get marker: %w", err)
	}

	marker := Marker{Tool: clean, Token: token}
	if ts, err := time.Parse(time.RFC3339Nano, installedAt); err == nil {
		marker.InstalledAt = ts
	}
	return marker, true, nil
}

// Put inserts or replaces the marker for marker.Tool.
func (s *SQLiteMarkerStore) Put(ctx context.Context, marker Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("install: sqlite store is nil")
	}
	clean := strings.TrimSpace(marker.Tool)
	if clean == "" {
		return errEmptyTool
	}
	token := marker.Token
	if strings.TrimSpace(token) == "" {
		token = DefaultToken
	}
	installedAt := marker.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO install_markers (tool, token, installed_at)
VALUES (?, ?, ?)
ON CONFLICT(tool) DO UPDATE SET
	token = excluded.token,
	installed_at = excluded.installed_at`,
		clean, token, installedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("install: sqlite put marker: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteMarkerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ MarkerStore = (*SQLiteMarkerStore)(nil)
