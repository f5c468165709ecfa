package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvBasePath       = "APP_RDS_DASHBOARD_GOOGLE_DRIVE_BASE_PATH"
	EnvProductID      = "APP_RDS_DASHBOARD_ALL_PRODUCTS_ID"
	EnvExportPath     = "APP_RDS_DASHBOARD_EXPORT_PATH"
	EnvCredentialPath = "APP_RDS_DASHBOARD_GOOGLE_SERVICE_CREDENTIAL_PATH"
	EnvScopes         = "APP_RDS_DASHBOARD_GOOGLE_SERVICE_CREDENTIAL_SCOPES"
	EnvSheetsKey      = "APP_RDS_DASHBOARD_GOOGLE_SHEETS_KEY"
	EnvSummarySheet   = "APP_RDS_DASHBOARD_SUMMARY_SHEET_NAME"
	EnvDetailSheet    = "APP_RDS_DASHBOARD_DETAIL_SHEET_NAME"
)

// LoadFile overlays the YAML file at path onto c. Keys not present in the
// file keep their current values; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := c.Load(f); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Load overlays YAML read from r onto c.
func (c *Config) Load(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays the APP_RDS_DASHBOARD_* variables that are set and
// non-empty. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Source.BasePath, EnvBasePath)
	set(&c.Source.ProductID, EnvProductID)
	set(&c.Output.Out, EnvExportPath)
	set(&c.Sheets.CredentialPath, EnvCredentialPath)
	set(&c.Sheets.Key, EnvSheetsKey)
	set(&c.Sheets.SummarySheet, EnvSummarySheet)
	set(&c.Sheets.DetailSheet, EnvDetailSheet)
	if v := strings.TrimSpace(getenv(EnvScopes)); v != "" {
		c.Sheets.Scopes = splitCommaList([]string{v})
	}
}
