package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside the data directory.
const FileName = "ytanalyzer.db"

// ErrMissingID is returned when a record has no analysis id.
var ErrMissingID = errors.New("analysis id is required")

// Store provides SQLite-based storage for fetched analyses and the export
// log. It is safe for concurrent use; SQLite serializes the writers.
//
// Design decision: One database file holds every analysis the user has
// looked at. The backend stays the source of truth; the store is a cache
// that lets "show --offline" and the preview server work without a
// round-trip, and a ledger that lets "export" skip unchanged documents.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time; replaced in tests.
	now func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the preview server can read
	// while the CLI writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Results hold the latest aggregate seen for each analysis
	CREATE TABLE IF NOT EXISTS results (
		analysis_id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		channel TEXT NOT NULL DEFAULT '',
		stage TEXT NOT NULL,
		judgment TEXT NOT NULL DEFAULT '',
		perspective TEXT NOT NULL DEFAULT '',
		result_json TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_fetched ON results(fetched_at);

	-- Exports log every document written to disk
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		stage TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL,
		path TEXT NOT NULL,
		digest TEXT NOT NULL,
		size INTEGER NOT NULL,
		exported_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_analysis ON exports(analysis_id);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// timestampLayout is a fixed-width UTC layout so stored timestamps sort
// lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp renders t for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
