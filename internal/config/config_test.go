package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := New()
	cfg.Source.OperationPaths = []string{"prepared-country-data/bangladesh"}
	return cfg
}

func TestValidate_NormalizesCommaDelimitedOperationPaths(t *testing.T) {
	cfg := New()
	cfg.Source.OperationPaths = []string{"ops/bgd, ops/moz", "ops/hti", ",,"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	want := []string{"ops/bgd", "ops/moz", "ops/hti"}
	if !reflect.DeepEqual(cfg.Source.OperationPaths, want) {
		t.Fatalf("OperationPaths normalized mismatch: got %v want %v", cfg.Source.OperationPaths, want)
	}
}

func TestValidate_NormalizesCommaDelimitedScopes(t *testing.T) {
	cfg := validConfig()
	cfg.Sheets.Scopes = []string{"a, b", "c"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(cfg.Sheets.Scopes, want) {
		t.Fatalf("Scopes normalized mismatch: got %v want %v", cfg.Sheets.Scopes, want)
	}
}

func TestValidate_RequiresOperations(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing operation paths")
	}
}

func TestValidate_RejectsAbsoluteOperationPath(t *testing.T) {
	cfg := New()
	cfg.Source.OperationPaths = []string{filepath.Join(string(filepath.Separator), "abs", "bgd")}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for absolute operation path")
	}
}

func TestValidate_DefaultsProductID(t *testing.T) {
	cfg := validConfig()
	cfg.Source.ProductID = "  "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if cfg.Source.ProductID != DefaultProductID {
		t.Fatalf("ProductID = %q, want %q", cfg.Source.ProductID, DefaultProductID)
	}
}

func TestValidate_ConsoleFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "text", format: "text", want: "text"},
		{name: "json_mixed_case", format: " JSON ", want: "json"},
		{name: "empty", format: "", wantErr: true},
		{name: "ndjson_not_console", format: "ndjson", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Output.ConsoleFormat = tt.format
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() returned error: %v", err)
			}
			if cfg.Output.ConsoleFormat != tt.want {
				t.Fatalf("ConsoleFormat = %q, want %q", cfg.Output.ConsoleFormat, tt.want)
			}
		})
	}
}

func TestValidate_InfersOutFormat(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		outFormat string
		want      string
		wantErr   bool
	}{
		{name: "json_ext", out: "export.json", want: "json"},
		{name: "ndjson_ext", out: "results.NDJSON", want: "ndjson"},
		{name: "jsonl_ext", out: "results.jsonl", want: "ndjson"},
		{name: "explicit_overrides_ext", out: "export.txt", outFormat: "ndjson", want: "ndjson"},
		{name: "missing_ext", out: "export", wantErr: true},
		{name: "unknown_ext", out: "export.csv", wantErr: true},
		{name: "unknown_format", out: "export.json", outFormat: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Output.Out = tt.out
			cfg.Output.OutFormat = tt.outFormat
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() returned error: %v", err)
			}
			if cfg.Output.OutFormat != tt.want {
				t.Fatalf("OutFormat = %q, want %q", cfg.Output.OutFormat, tt.want)
			}
		})
	}
}

func TestValidate_Sheets(t *testing.T) {
	cfg := validConfig()
	cfg.Sheets.Enabled = true
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "sheets.key") {
		t.Fatalf("expected sheets.key error, got %v", err)
	}

	cfg = validConfig()
	cfg.Sheets.Enabled = true
	cfg.Sheets.Key = "abc"
	cfg.Sheets.CredentialPath = "creds.json"
	cfg.Sheets.DetailSheet = cfg.Sheets.SummarySheet
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for identical sheet names")
	}

	cfg = validConfig()
	cfg.Sheets.Enabled = true
	cfg.Sheets.Key = "abc"
	cfg.Sheets.CredentialPath = "creds.json"
	cfg.Sheets.Scopes = nil
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Sheets.Scopes, []string{DefaultSheetsScope}) {
		t.Fatalf("Scopes = %v, want default", cfg.Sheets.Scopes)
	}
}

func TestValidate_NormalizesGitHubRepo(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "mapaction/rds-dashboard", want: "mapaction/rds-dashboard"},
		{in: "https://github.com/mapaction/rds-dashboard", want: "mapaction/rds-dashboard"},
		{in: "github.com/mapaction/rds-dashboard.git", want: "mapaction/rds-dashboard"},
		{in: "https://www.github.com/mapaction/rds-dashboard/", want: "mapaction/rds-dashboard"},
		{in: "mapaction", wantErr: true},
		{in: "https://gitlab.com/mapaction/rds-dashboard", wantErr: true},
		{in: "a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := validConfig()
			cfg.GitHub.Repo = tt.in
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() returned error: %v", err)
			}
			if cfg.GitHub.Repo != tt.want {
				t.Fatalf("Repo = %q, want %q", cfg.GitHub.Repo, tt.want)
			}
			owner, name := cfg.RepoOwnerName()
			if owner != "mapaction" || name != "rds-dashboard" {
				t.Fatalf("RepoOwnerName() = %q, %q", owner, name)
			}
		})
	}
}

func TestValidate_Runtime(t *testing.T) {
	cfg := validConfig()
	cfg.Runtime.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for concurrency 0")
	}

	cfg = validConfig()
	cfg.Runtime.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for timeout 0")
	}
}

func TestLoad_OverlaysYAML(t *testing.T) {
	cfg := New()
	err := cfg.Load(strings.NewReader(`
source:
  base_path: /Volumes/GoogleDrive
  operation_paths:
    - Shared drives/prepared-country-data/bangladesh
    - Shared drives/country-responses/2021-moz-001
output:
  report: report.md
sheets:
  enabled: true
  key: sheet-key
runtime:
  timeout: 90s
  concurrency: 2
`))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Source.BasePath != "/Volumes/GoogleDrive" {
		t.Fatalf("BasePath = %q", cfg.Source.BasePath)
	}
	if len(cfg.Source.OperationPaths) != 2 {
		t.Fatalf("OperationPaths = %v", cfg.Source.OperationPaths)
	}
	if cfg.Runtime.Timeout != 90*time.Second || cfg.Runtime.Concurrency != 2 {
		t.Fatalf("Runtime = %+v", cfg.Runtime)
	}
	// Untouched keys keep their defaults.
	if cfg.Sheets.SummarySheet != DefaultSummarySheet || cfg.Source.ProductID != DefaultProductID {
		t.Fatalf("defaults were lost: %+v %+v", cfg.Sheets, cfg.Source)
	}
	if cfg.Output.Report != "report.md" || !cfg.Sheets.Enabled || cfg.Sheets.Key != "sheet-key" {
		t.Fatalf("unexpected values: %+v %+v", cfg.Output, cfg.Sheets)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	cfg := New()
	if err := cfg.Load(strings.NewReader("source:\n  base_pth: x\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	cfg := New()
	if err := cfg.Load(strings.NewReader("\n\n")); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, New()) {
		t.Fatalf("empty document changed config")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rdsdash.yaml")
	if err := os.WriteFile(path, []byte("github:\n  repo: mapaction/rds\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := New()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() returned error: %v", err)
	}
	if cfg.GitHub.Repo != "mapaction/rds" {
		t.Fatalf("Repo = %q", cfg.GitHub.Repo)
	}

	if err := cfg.LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBasePath:     "/mnt/drive",
		EnvProductID:    "MA0001",
		EnvExportPath:   "out/export.json",
		EnvScopes:       "s1, s2",
		EnvSheetsKey:    "key",
		EnvSummarySheet: "",
		EnvDetailSheet:  "Layers",
	}
	cfg := New()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Source.BasePath != "/mnt/drive" || cfg.Source.ProductID != "MA0001" {
		t.Fatalf("Source = %+v", cfg.Source)
	}
	if cfg.Output.Out != "out/export.json" {
		t.Fatalf("Out = %q", cfg.Output.Out)
	}
	if !reflect.DeepEqual(cfg.Sheets.Scopes, []string{"s1", "s2"}) {
		t.Fatalf("Scopes = %v", cfg.Sheets.Scopes)
	}
	if cfg.Sheets.SummarySheet != DefaultSummarySheet {
		t.Fatalf("empty env value must not override: %q", cfg.Sheets.SummarySheet)
	}
	if cfg.Sheets.Key != "key" || cfg.Sheets.DetailSheet != "Layers" {
		t.Fatalf("Sheets = %+v", cfg.Sheets)
	}
}
