package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

// WriteSnapshot records one export run and its results in a single
// transaction and returns the new run id. The encoded export is kept as
// the run payload.
func (s *Store) WriteSnapshot(ctx context.Context, snap *snapshot.Snapshot) (string, error) {
	var payload bytes.Buffer
	if err := snapshot.Encode(&payload, snap); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	date := snap.Meta.ExportDatetime
	if len(date) < len("2006-01-02") {
		return "", fmt.Errorf("write snapshot: malformed export datetime %q", snap.Meta.ExportDatetime)
	}
	date = date[:len("2006-01-02")]

	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, export_datetime, export_date, export_version, app_version, operations, layers, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		snap.Meta.ExportDatetime,
		date,
		snap.Meta.ExportVersion,
		snap.Meta.AppVersion,
		len(snap.Data.Operations),
		snap.Len(),
		payload.String(),
	)
	if err != nil {
		return "", fmt.Errorf("write snapshot: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, seq, operation_id, layer_id, category, result)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("write snapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range snap.Data.UngroupedResults {
		category, err := records.LayerCategory(r.LayerID)
		if err != nil {
			return "", fmt.Errorf("write snapshot: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, r.OperationID, r.LayerID, category, string(r.Result)); err != nil {
			return "", fmt.Errorf("write snapshot: insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write snapshot: commit: %w", err)
	}
	return runID, nil
}
