package output

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rdsdash/internal/snapshot"
)

// HistoryStore persists snapshots. *store.Store satisfies it.
type HistoryStore interface {
	WriteSnapshot(ctx context.Context, s *snapshot.Snapshot) (string, error)
	Close() error
}

// HistorySink appends every export to the run history. The sink owns the
// store and closes it.
type HistorySink struct {
	store  HistoryStore
	logger *zap.Logger
	lastID string
}

func NewHistorySink(store HistoryStore, logger *zap.Logger) (*HistorySink, error) {
	if store == nil {
		return nil, fmt.Errorf("history store must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistorySink{store: store, logger: logger}, nil
}

func (s *HistorySink) Write(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := snapshot.Supported(snap); err != nil {
		return err
	}
	id, err := s.store.WriteSnapshot(ctx, snap)
	if err != nil {
		return err
	}
	s.lastID = id
	s.logger.Info("run recorded", zap.String("history_run_id", id), zap.Int("layers", snap.Len()))
	return nil
}

// LastRunID is the history id of the most recent write.
func (s *HistorySink) LastRunID() string {
	return s.lastID
}

func (s *HistorySink) Close() error {
	return s.store.Close()
}
