package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rdsdash/internal/snapshot"
)

// FileSink writes the export to a file. The file is replaced atomically so
// a failed run never leaves a truncated export behind.
type FileSink struct {
	path   string
	format string
	mu     sync.Mutex
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	// Infer format if not provided
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &FileSink{
		path:   path,
		format: format,
	}, nil
}

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(_ context.Context, snap *snapshot.Snapshot) error {
	if err := snapshot.Supported(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	switch s.format {
	case "json":
		err = snapshot.Encode(w, snap)
	case "ndjson":
		encoder := json.NewEncoder(w)
		for _, e := range eventsFromSnapshot(snap) {
			if err = encoder.Encode(e); err != nil {
				break
			}
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileSink) Close() error {
	return nil
}
