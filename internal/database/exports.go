package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Export is one document written to disk.
type Export struct {
	ID         int64
	AnalysisID string
	Stage      string
	Filename   string
	Path       string

	// Digest identifies the document content independent of its
	// generation date, see report.Document.Digest.
	Digest string

	Size       int64
	ExportedAt time.Time
}

// RecordExport appends an entry to the export log and returns its id.
// A zero ExportedAt is set to the current time.
func (s *Store) RecordExport(ctx context.Context, e *Export) (int64, error) {
	if e == nil || e.AnalysisID == "" {
		return 0, ErrMissingID
	}
	if e.ExportedAt.IsZero() {
		e.ExportedAt = s.now()
	}

	query := `
	INSERT INTO exports (analysis_id, stage, filename, path, digest, size, exported_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		e.AnalysisID,
		e.Stage,
		e.Filename,
		e.Path,
		e.Digest,
		e.Size,
		formatTimestamp(e.ExportedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record export: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read export id: %w", err)
	}
	e.ID = id
	return id, nil
}

// LastExport returns the most recent export of an analysis.
// Returns nil, nil if it was never exported.
func (s *Store) LastExport(ctx context.Context, analysisID string) (*Export, error) {
	query := `
	SELECT id, analysis_id, stage, filename, path, digest, size, exported_at
	FROM exports
	WHERE analysis_id = ?
	ORDER BY exported_at DESC, id DESC
	LIMIT 1
	`

	e, err := scanExport(s.db.QueryRowContext(ctx, query, analysisID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return e, nil
}

// ListExports returns every export of an analysis, newest first.
func (s *Store) ListExports(ctx context.Context, analysisID string) ([]Export, error) {
	query := `
	SELECT id, analysis_id, stage, filename, path, digest, size, exported_at
	FROM exports
	WHERE analysis_id = ?
	ORDER BY exported_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, *e)
	}
	return exports, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExport(row rowScanner) (*Export, error) {
	var e Export
	var exportedAt string
	if err := row.Scan(
		&e.ID,
		&e.AnalysisID,
		&e.Stage,
		&e.Filename,
		&e.Path,
		&e.Digest,
		&e.Size,
		&exportedAt,
	); err != nil {
		return nil, err
	}
	e.ExportedAt = parseTimestamp(exportedAt)
	return &e, nil
}
