package output

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"rdsdash/internal/snapshot"
	"rdsdash/internal/store"
)

func TestHistorySink_WritesToStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	s, err := NewHistorySink(st, nil)
	if err != nil {
		t.Fatalf("NewHistorySink failed: %v", err)
	}

	ctx := context.Background()
	if err := s.Write(ctx, testSnapshot(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if s.LastRunID() == "" {
		t.Fatalf("expected a run id")
	}

	results, err := st.Results(ctx, s.LastRunID())
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("stored %d results, want 5", len(results))
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

type failingStore struct{ closed bool }

func (f *failingStore) WriteSnapshot(context.Context, *snapshot.Snapshot) (string, error) {
	return "", errors.New("disk full")
}

func (f *failingStore) Close() error {
	f.closed = true
	return nil
}

func TestHistorySink_Errors(t *testing.T) {
	fs := &failingStore{}
	s, err := NewHistorySink(fs, nil)
	if err != nil {
		t.Fatalf("NewHistorySink failed: %v", err)
	}
	if err := s.Write(context.Background(), testSnapshot(t)); err == nil || err.Error() != "disk full" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Write(context.Background(), unsupportedSnapshot(t)); !errors.Is(err, snapshot.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if err := s.Close(); err != nil || !fs.closed {
		t.Fatalf("Close should close the store")
	}
	if _, err := NewHistorySink(nil, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
