package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Supported reports whether s has a shape this build understands.
// Exporters call it before writing anything.
func Supported(s *Snapshot) error {
	if s == nil {
		return errors.New("snapshot is nil")
	}
	if s.Meta.ExportVersion != ExportVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, s.Meta.ExportVersion, ExportVersion)
	}
	return nil
}

// Decode reads an exported snapshot. meta.export_version is read first and
// the body is only decoded when the version is ExportVersion. Unknown keys
// are tolerated once the version matches.
func Decode(r io.Reader) (*Snapshot, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var probe struct {
		Meta struct {
			ExportVersion *int `json:"export_version"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("decode snapshot meta: %w", err)
	}
	if probe.Meta.ExportVersion == nil {
		return nil, fmt.Errorf("%w: meta.export_version is missing", ErrUnsupportedVersion)
	}
	if v := *probe.Meta.ExportVersion; v != ExportVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, v, ExportVersion)
	}

	var s Snapshot
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
