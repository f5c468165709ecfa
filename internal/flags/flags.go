package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// the config overlay. Keeping these as constants helps avoid drift between
// Cobra flag wiring and the code that applies explicitly set flags on top
// of the config file and environment.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Source.BasePath, flags.FlagBasePath, "", "...")
//	arg := "--" + flags.FlagBasePath
const (
	// Global
	FlagConfig  = "config"
	FlagVerbose = "verbose"

	// Source
	FlagBasePath   = "base-path"
	FlagOperations = "operations"
	FlagProduct    = "product"
	FlagInclude    = "include"
	FlagExclude    = "exclude"

	// Output
	FlagConsoleFormat = "console-format"
	FlagNoConsole     = "no-console"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagReport        = "report"
	FlagHistory       = "history"

	// Sheets
	FlagSheets      = "sheets"
	FlagSheetsKey   = "sheets-key"
	FlagCredentials = "credentials"

	// GitHub
	FlagGitHubRepo   = "github-repo"
	FlagGitHubPath   = "github-path"
	FlagGitHubBranch = "github-branch"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagStrict      = "strict"

	// History
	FlagLimit  = "limit"
	FlagPerDay = "per-day"
)
