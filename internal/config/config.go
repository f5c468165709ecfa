package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/export.go
	// - environment overrides in internal/config/load.go
	Source  Source  `yaml:"source"`
	Output  Output  `yaml:"output"`
	Sheets  Sheets  `yaml:"sheets"`
	GitHub  GitHub  `yaml:"github"`
	Runtime Runtime `yaml:"runtime"`
}

type Source struct {
	// BasePath is the root every operation path is relative to, usually the
	// mounted shared drive (see --base-path).
	BasePath string `yaml:"base_path"`

	// OperationPaths lists the Crash Move Folders to report on, relative to
	// BasePath (see --operations). Comma-separated lists are accepted.
	OperationPaths []string `yaml:"operation_paths"`

	// ProductID is the MapChef product whose layers are evaluated (see --product).
	ProductID string `yaml:"all_products_product_id"`

	// Include filters operations using Go path.Match style (see --include).
	// If a pattern contains '/', it matches the operation path; otherwise it matches the operation id.
	Include []string `yaml:"include"`

	// Exclude filters operations using Go path.Match style (see --exclude).
	// Same matching rules as Include.
	Exclude []string `yaml:"exclude"`
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json.
	ConsoleFormat string `yaml:"console_format"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `yaml:"no_console"`

	// Out writes the export to this path (see --out). Empty disables the file sink.
	Out string `yaml:"out"`

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string `yaml:"out_format"`

	// Report writes a Markdown report to this path (see --report).
	Report string `yaml:"report"`

	// History appends the run to a SQLite database at this path (see --history).
	History string `yaml:"history"`
}

type Sheets struct {
	// Enabled turns on the Google Sheets exporter (see --sheets).
	Enabled bool `yaml:"enabled"`

	// CredentialPath is the service account key file.
	CredentialPath string `yaml:"credential_path"`

	// Scopes granted to the service account. Comma-separated lists are accepted.
	Scopes []string `yaml:"scopes"`

	// Key identifies the spreadsheet.
	Key string `yaml:"key"`

	SummarySheet string `yaml:"summary_sheet"`
	DetailSheet  string `yaml:"detail_sheet"`

	// DailySheet also writes the detail table to an output-YYYY-MM-DD sheet.
	DailySheet bool `yaml:"daily_sheet"`
}

type GitHub struct {
	// Repo publishes the export to this repository as OWNER/REPO or a GitHub URL
	// (see --github-repo). Empty disables the GitHub exporter.
	Repo string `yaml:"repo"`

	// Path of the export file within the repository.
	Path string `yaml:"path"`

	// Branch to commit to. Empty means the repository's default branch.
	Branch string `yaml:"branch"`

	// Message is the commit message.
	Message string `yaml:"message"`
}

type Runtime struct {
	// Concurrency controls how many Crash Move Folders are read in parallel (see --concurrency).
	// Must be >= 1.
	Concurrency int `yaml:"concurrency"`

	// Timeout is the global timeout for the run (see --timeout).
	// Must be > 0.
	Timeout time.Duration `yaml:"timeout"`

	// Strict makes FAIL or ERROR verdicts an unsuccessful run (see --strict).
	Strict bool `yaml:"strict"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

const (
	DefaultProductID     = "MA9999"
	DefaultSummarySheet  = "Summary"
	DefaultDetailSheet   = "All layers"
	DefaultSheetsScope   = "https://www.googleapis.com/auth/spreadsheets"
	DefaultGitHubPath    = "export.json"
	DefaultGitHubMessage = "Update RDS dashboard export"
)

func New() *Config {
	return &Config{
		Source: Source{
			BasePath:  ".",
			ProductID: DefaultProductID,
		},
		Output: Output{
			ConsoleFormat: "text",
			Out:           "export.json",
		},
		Sheets: Sheets{
			Scopes:       []string{DefaultSheetsScope},
			SummarySheet: DefaultSummarySheet,
			DetailSheet:  DefaultDetailSheet,
			DailySheet:   true,
		},
		GitHub: GitHub{
			Path:    DefaultGitHubPath,
			Message: DefaultGitHubMessage,
		},
		Runtime: Runtime{
			Concurrency: 5,
			Timeout:     5 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Source.OperationPaths = splitCommaList(c.Source.OperationPaths)
	c.Source.Include = splitCommaList(c.Source.Include)
	c.Source.Exclude = splitCommaList(c.Source.Exclude)
	c.Sheets.Scopes = splitCommaList(c.Sheets.Scopes)

	// Source validation
	c.Source.BasePath = strings.TrimSpace(c.Source.BasePath)
	if c.Source.BasePath == "" {
		return errors.New("--base-path must not be empty")
	}
	if len(c.Source.OperationPaths) == 0 {
		return errors.New("at least one operation path must be provided (--operations or source.operation_paths)")
	}
	for _, p := range c.Source.OperationPaths {
		if filepath.IsAbs(p) {
			return fmt.Errorf("operation path %q must be relative to --base-path", p)
		}
	}
	c.Source.ProductID = strings.TrimSpace(c.Source.ProductID)
	if c.Source.ProductID == "" {
		c.Source.ProductID = DefaultProductID
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json)", c.Output.ConsoleFormat)
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else {
			if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
				return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
			}
		}
	}

	// Sheets validation
	if c.Sheets.Enabled {
		if strings.TrimSpace(c.Sheets.Key) == "" {
			return errors.New("sheets.key is required when the Google Sheets exporter is enabled")
		}
		if strings.TrimSpace(c.Sheets.CredentialPath) == "" {
			return errors.New("sheets.credential_path is required when the Google Sheets exporter is enabled")
		}
		if len(c.Sheets.Scopes) == 0 {
			c.Sheets.Scopes = []string{DefaultSheetsScope}
		}
		if strings.TrimSpace(c.Sheets.SummarySheet) == "" || strings.TrimSpace(c.Sheets.DetailSheet) == "" {
			return errors.New("sheets.summary_sheet and sheets.detail_sheet must not be empty")
		}
		if c.Sheets.SummarySheet == c.Sheets.DetailSheet {
			return fmt.Errorf("sheets.summary_sheet and sheets.detail_sheet must differ (both %q)", c.Sheets.SummarySheet)
		}
	}

	// GitHub validation
	if c.GitHub.Repo != "" {
		repo, err := normalizeRepoSelector(c.GitHub.Repo)
		if err != nil {
			return fmt.Errorf("invalid --github-repo value: %w", err)
		}
		c.GitHub.Repo = repo
		c.GitHub.Path = strings.Trim(strings.TrimSpace(c.GitHub.Path), "/")
		if c.GitHub.Path == "" {
			c.GitHub.Path = DefaultGitHubPath
		}
		if strings.TrimSpace(c.GitHub.Message) == "" {
			c.GitHub.Message = DefaultGitHubMessage
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

// RepoOwnerName splits GitHub.Repo. Call after Validate.
func (c *Config) RepoOwnerName() (owner, name string) {
	owner, name, _ = strings.Cut(c.GitHub.Repo, "/")
	return owner, name
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeRepoSelector(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	// Accept OWNER/REPO, or a GitHub URL like:
	//   https://github.com/<owner>/<repo>
	//   github.com/<owner>/<repo>.git
	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return "", fmt.Errorf("%q", raw)
		}
		raw = strings.Trim(u.Path, "/")
	}

	parts := strings.Split(strings.TrimSuffix(raw, ".git"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%q: expected OWNER/REPO", raw)
	}
	return parts[0] + "/" + parts[1], nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
