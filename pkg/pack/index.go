package pack

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Scan outcomes recorded in the index.
const (
	StatusOK        = "ok"
	StatusInvalid   = "invalid"
	StatusDuplicate = "duplicate"
)

// Entry is the last scan outcome for one pack folder.
type Entry struct {
	Folder    string
	Name      string
	Version   string
	Dimension string
	Status    string
	Error     string
	ScannedAt time.Time
}

// Index is a SQLite record of pack scans, kept so operators can see why a
// pack was skipped without digging through logs.
type Index struct {
	db *sql.DB
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("open pack index: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open pack index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS packs (
			folder TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			dimension TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL,
			scanned_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init pack index: %w", err)
		}
	}
	return &Index{db: db}, nil
}

// Record stores e, replacing the previous entry for the same folder.
func (i *Index) Record(ctx context.Context, e Entry) error {
	if e.ScannedAt.IsZero() {
		e.ScannedAt = time.Now()
	}
	_, err := i.db.ExecContext(ctx, `
		INSERT INTO packs (folder, name, version, dimension, status, error, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(folder) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			dimension = excluded.dimension,
			status = excluded.status,
			error = excluded.error,
			scanned_at = excluded.scanned_at`,
		e.Folder, e.Name, e.Version, e.Dimension, e.Status, e.Error,
		e.ScannedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record pack %s: %w", e.Folder, err)
	}
	return nil
}

// Entries returns every recorded entry ordered by folder.
func (i *Index) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT folder, name, version, dimension, status, error, scanned_at
		FROM packs ORDER BY folder`)
	if err != nil {
		return nil, fmt.Errorf("query pack index: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			scanned string
		)
		if err := rows.Scan(&e.Folder, &e.Name, &e.Version, &e.Dimension, &e.Status, &e.Error, &scanned); err != nil {
			return nil, fmt.Errorf("scan pack index: %w", err)
		}
		if e.ScannedAt, err = time.Parse(time.RFC3339Nano, scanned); err != nil {
			return nil, fmt.Errorf("parse scan time of %s: %w", e.Folder, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}
