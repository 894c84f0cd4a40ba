package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// ResultMetadata summarizes a cached analysis without decoding the full
// aggregate. It backs "history --local".
type ResultMetadata struct {
	AnalysisID  string
	VideoID     string
	Title       string
	Channel     string
	Stage       string
	Judgment    string
	Perspective string
	FetchedAt   time.Time
}

// SaveResult stores the aggregate under its analysis id.
//
// If an aggregate is already stored it is merged with model.Extend, so
// saving an older snapshot never drops a stage that was cached before,
// while a newer critical section (another perspective) replaces the
// cached one.
func (s *Store) SaveResult(ctx context.Context, result *model.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return ErrMissingID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	var existingJSON string
	err = tx.QueryRowContext(ctx, `SELECT result_json FROM results WHERE analysis_id = ?`, result.ID).Scan(&existingJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to read cached result: %w", err)
	default:
		var existing model.AnalysisResult
		if err := json.Unmarshal([]byte(existingJSON), &existing); err == nil {
			result = model.Extend(&existing, result)
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	perspective := result.Perspective
	if perspective == "" && result.CriticalAnalysis != nil {
		perspective = result.CriticalAnalysis.Perspective
	}

	query := `
	INSERT INTO results (analysis_id, video_id, title, channel, stage, judgment, perspective, result_json, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(analysis_id) DO UPDATE SET
		video_id = excluded.video_id,
		title = excluded.title,
		channel = excluded.channel,
		stage = excluded.stage,
		judgment = excluded.judgment,
		perspective = excluded.perspective,
		result_json = excluded.result_json,
		fetched_at = excluded.fetched_at
	`
	_, err = tx.ExecContext(ctx, query,
		result.ID,
		result.VideoID,
		result.VideoTitle,
		result.ChannelName,
		result.CompletedStage().String(),
		string(result.Judgment()),
		perspective,
		string(resultJSON),
		formatTimestamp(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

// GetResult retrieves the cached aggregate for an analysis id.
// Returns nil, nil if nothing is cached.
func (s *Store) GetResult(ctx context.Context, analysisID string) (*model.AnalysisResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM results WHERE analysis_id = ?`, analysisID,
	).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &result, nil
}

// GetFreshResult returns the cached aggregate only if it was fetched
// within maxAge. Returns nil, nil for a missing or stale entry.
func (s *Store) GetFreshResult(ctx context.Context, analysisID string, maxAge time.Duration) (*model.AnalysisResult, error) {
	var fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM results WHERE analysis_id = ?`, analysisID,
	).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check cached result: %w", err)
	}

	if s.now().Sub(parseTimestamp(fetchedAt)) > maxAge {
		return nil, nil
	}
	return s.GetResult(ctx, analysisID)
}

// ListResults returns cached analyses, most recently fetched first.
func (s *Store) ListResults(ctx context.Context, limit, offset int) ([]ResultMetadata, error) {
	query := `
	SELECT analysis_id, video_id, title, channel, stage, judgment, perspective, fetched_at
	FROM results
	ORDER BY fetched_at DESC, analysis_id
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []ResultMetadata
	for rows.Next() {
		var meta ResultMetadata
		var fetchedAt string
		if err := rows.Scan(
			&meta.AnalysisID,
			&meta.VideoID,
			&meta.Title,
			&meta.Channel,
			&meta.Stage,
			&meta.Judgment,
			&meta.Perspective,
			&fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		meta.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// CountResults returns the number of cached analyses.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// DeleteResult removes a cached analysis and its export log.
// Reports whether a cached analysis existed.
func (s *Store) DeleteResult(ctx context.Context, analysisID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM results WHERE analysis_id = ?`, analysisID)
	if err != nil {
		return false, fmt.Errorf("failed to delete result: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exports WHERE analysis_id = ?`, analysisID); err != nil {
		return false, fmt.Errorf("failed to delete export log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n > 0, nil
}
