package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

var ErrRunNotFound = errors.New("run not found")

// Run summarizes one stored export.
type Run struct {
	ID             string
	ExportDatetime string
	ExportDate     string
	ExportVersion  int
	AppVersion     string
	Operations     int
	Layers         int
}

// Result is one stored record of a run, in collection order.
type Result struct {
	Seq         int
	OperationID string
	LayerID     string
	Category    string
	Result      records.Result
}

const runColumns = `id, export_datetime, export_date, export_version, app_version, operations, layers`

// Runs returns stored runs, newest first. limit <= 0 returns all of them.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY export_datetime DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return scanRuns(rows)
}

// LatestPerDay returns the last run of each export date, newest date
// first.
func (s *Store) LatestPerDay(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixed("r.", runColumns)+`
		FROM runs r
		WHERE r.rowid = (
			SELECT r2.rowid FROM runs r2
			WHERE r2.export_date = r.export_date
			ORDER BY r2.export_datetime DESC, r2.rowid DESC
			LIMIT 1
		)
		ORDER BY r.export_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query latest runs: %w", err)
	}
	return scanRuns(rows)
}

// Results returns the records stored for runID in collection order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	if err := s.runExists(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, operation_id, layer_id, category, result
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		var raw string
		if err := rows.Scan(&r.Seq, &r.OperationID, &r.LayerID, &r.Category, &raw); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if r.Result, err = records.ParseResult(raw); err != nil {
			return nil, fmt.Errorf("result %d of run %s: %w", r.Seq, runID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// Snapshot decodes the export stored for runID.
func (s *Store) Snapshot(ctx context.Context, runID string) (*snapshot.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query payload: %w", err)
	}
	return snapshot.Decode(strings.NewReader(payload))
}

func (s *Store) runExists(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	return nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()
	out := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ExportDatetime, &r.ExportDate, &r.ExportVersion, &r.AppVersion, &r.Operations, &r.Layers); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func prefixed(prefix, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, c := range cols {
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}
