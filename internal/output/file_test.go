package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

func TestNewFileSink_InferFormat(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "json_ext", file: "export.json", want: "json"},
		{name: "ndjson_ext", file: "export.ndjson", want: "ndjson"},
		{name: "jsonl_ext", file: "export.jsonl", want: "ndjson"},
		{name: "explicit", file: "export.out", format: "json", want: "json"},
		{name: "unknown_ext", file: "export.unknown", wantErr: true},
		{name: "unsupported_format", file: "export.json", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewFileSink(filepath.Join(dir, tt.file), tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if s.format != tt.want {
				t.Fatalf("format = %q, want %q", s.format, tt.want)
			}
		})
	}
}

func TestNewFileSink_EmptyPath(t *testing.T) {
	if _, err := NewFileSink("", "json"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFileSink_JSON_WritesExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.json")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink() error: %v", err)
	}
	snap := testSnapshot(t)
	if err := s.Write(context.Background(), snap); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var want bytes.Buffer
	_ = snapshot.Encode(&want, snap)
	if !bytes.Equal(b, want.Bytes()) {
		t.Fatalf("file content differs from snapshot.Encode output")
	}

	decoded, err := snapshot.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if err := snapshot.Check(decoded); err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestFileSink_NDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.ndjson")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink() error: %v", err)
	}
	if err := s.Write(context.Background(), testSnapshot(t)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		events = append(events, e)
	}
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}
	if events[0].Type != EventMeta || events[0].Meta == nil || events[0].Meta.ExportVersion != snapshot.ExportVersion {
		t.Fatalf("first event must be the meta block: %+v", events[0])
	}
	second := events[2]
	if second.Type != EventResult || second.OperationID != "bgd" || second.LayerID != "mainmap-tran-rds-ln-s1-osm" ||
		second.Category != "tran" || second.Result != records.ResultFail || second.AffectedCountryISO3 != "BGD" {
		t.Fatalf("unexpected result event: %+v", second)
	}
}

func TestFileSink_FailedWriteKeepsPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink() error: %v", err)
	}

	err = s.Write(context.Background(), unsupportedSnapshot(t))
	if !errors.Is(err, snapshot.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	b, _ := os.ReadFile(path)
	if !strings.EqualFold(string(b), "previous") {
		t.Fatalf("previous export was modified: %q", b)
	}
}
