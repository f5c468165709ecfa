package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rdsdash/internal/config"
	"rdsdash/internal/engine"
	"rdsdash/internal/flags"
	gh "rdsdash/internal/github"
	"rdsdash/internal/logging"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Collect results and publish the dashboard export",
	Long: `Collect layer results from the configured Crash Move Folders, assemble the
export snapshot, check it, and publish it to every configured destination.

Destinations:
	- console (--console-format text|json, or --no-console)
	- file (--out, default export.json; --out-format json|ndjson)
	- Markdown report (--report)
	- run history in SQLite (--history)
	- Google Sheets (--sheets, --sheets-key, --credentials)
	- a file in a GitHub repository (--github-repo, --github-path, --github-branch)

	A destination that fails does not stop the others.

Authentication:
	Google Sheets uses a service account key file (--credentials or
	` + config.EnvCredentialPath + `).
	GitHub uses ` + gh.TokenEnv + `, then GITHUB_TOKEN, then the gh CLI
	(gh auth token), in that order.

Exit codes:
	0 = export published
	1 = --strict and some layers Fail or Error
	2 = partial failure (a destination could not be written)
	3 = fatal error (nothing was exported)

Examples:
	# Export from a mounted shared drive
	rdsdash export --base-path /mnt/drive --operations ops/2021-bgd-001

	# Use a config file and also write a report
	rdsdash export --config rdsdash.yaml --report report.md

	# Machine output only
	rdsdash export --config rdsdash.yaml --no-console --out export.ndjson
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd, os.Getenv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(engine.ExitFatal)
			return
		}

		logger, err := logging.New(cfg.Runtime.Verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
			exitFunc(engine.ExitFatal)
			return
		}
		eng := engine.NewEngine(logger, buildVersion)
		eng.Stdout = cmd.OutOrStdout()
		code := eng.Run(cmd.Context(), cfg)
		_ = logger.Sync()
		exitFunc(code)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// MAINTAINER NOTE: If you add/change/remove flags here, keep overlayFlags
	// in resolve.go in sync.

	// Source
	addSourceFlags(exportCmd)

	// Output
	exportCmd.Flags().StringVar(&flagCfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json (default: text)")
	exportCmd.Flags().BoolVar(&flagCfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output")
	exportCmd.Flags().StringVar(&flagCfg.Output.Out, flags.FlagOut, flagCfg.Output.Out, "Write the export to this path (empty disables; env "+config.EnvExportPath+")")
	exportCmd.Flags().StringVar(&flagCfg.Output.OutFormat, flags.FlagOutFormat, "", "Format for --out: json|ndjson (default: inferred from file extension)")
	exportCmd.Flags().StringVar(&flagCfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	exportCmd.Flags().StringVar(&flagCfg.Output.History, flags.FlagHistory, "", "Record the run in a SQLite history database at this path")

	// Sheets
	exportCmd.Flags().BoolVar(&flagCfg.Sheets.Enabled, flags.FlagSheets, false, "Publish summary and detail tables to Google Sheets")
	exportCmd.Flags().StringVar(&flagCfg.Sheets.Key, flags.FlagSheetsKey, "", "Spreadsheet key (env "+config.EnvSheetsKey+")")
	exportCmd.Flags().StringVar(&flagCfg.Sheets.CredentialPath, flags.FlagCredentials, "", "Service account key file (env "+config.EnvCredentialPath+")")

	// GitHub
	exportCmd.Flags().StringVar(&flagCfg.GitHub.Repo, flags.FlagGitHubRepo, "", "Commit the JSON export to this repository (OWNER/REPO or URL)")
	exportCmd.Flags().StringVar(&flagCfg.GitHub.Path, flags.FlagGitHubPath, flagCfg.GitHub.Path, "Path of the export within --github-repo")
	exportCmd.Flags().StringVar(&flagCfg.GitHub.Branch, flags.FlagGitHubBranch, "", "Branch to commit to (default: the repository's default branch)")

	// Runtime
	exportCmd.Flags().DurationVar(&flagCfg.Runtime.Timeout, flags.FlagTimeout, flagCfg.Runtime.Timeout, "Global timeout")
	exportCmd.Flags().BoolVar(&flagCfg.Runtime.Strict, flags.FlagStrict, false, "Exit 1 when any layer is Fail or Error")
}
