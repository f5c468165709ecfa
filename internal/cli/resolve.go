package cli

import (
	"github.com/spf13/cobra"

	"rdsdash/internal/config"
	"rdsdash/internal/flags"
)

// flagCfg receives flag values. Only flags the user actually set are
// copied onto the resolved configuration, so unset flags never mask the
// config file or environment.
var flagCfg = config.New()

// resolveConfig builds the run configuration:
// defaults < --config file < environment < explicitly set flags.
func resolveConfig(cmd *cobra.Command, getenv func(string) string) (*config.Config, error) {
	cfg := config.New()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(getenv)
	overlayFlags(cmd.Flags().Changed, cfg, flagCfg)
	if verbose {
		cfg.Runtime.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayFlags(changed func(string) bool, dst, src *config.Config) {
	overlays := []struct {
		name  string
		apply func()
	}{
		{flags.FlagBasePath, func() { dst.Source.BasePath = src.Source.BasePath }},
		{flags.FlagOperations, func() { dst.Source.OperationPaths = src.Source.OperationPaths }},
		{flags.FlagProduct, func() { dst.Source.ProductID = src.Source.ProductID }},
		{flags.FlagInclude, func() { dst.Source.Include = src.Source.Include }},
		{flags.FlagExclude, func() { dst.Source.Exclude = src.Source.Exclude }},

		{flags.FlagConsoleFormat, func() { dst.Output.ConsoleFormat = src.Output.ConsoleFormat }},
		{flags.FlagNoConsole, func() { dst.Output.NoConsole = src.Output.NoConsole }},
		{flags.FlagOut, func() { dst.Output.Out = src.Output.Out }},
		{flags.FlagOutFormat, func() { dst.Output.OutFormat = src.Output.OutFormat }},
		{flags.FlagReport, func() { dst.Output.Report = src.Output.Report }},
		{flags.FlagHistory, func() { dst.Output.History = src.Output.History }},

		{flags.FlagSheets, func() { dst.Sheets.Enabled = src.Sheets.Enabled }},
		{flags.FlagSheetsKey, func() { dst.Sheets.Key = src.Sheets.Key }},
		{flags.FlagCredentials, func() { dst.Sheets.CredentialPath = src.Sheets.CredentialPath }},

		{flags.FlagGitHubRepo, func() { dst.GitHub.Repo = src.GitHub.Repo }},
		{flags.FlagGitHubPath, func() { dst.GitHub.Path = src.GitHub.Path }},
		{flags.FlagGitHubBranch, func() { dst.GitHub.Branch = src.GitHub.Branch }},

		{flags.FlagConcurrency, func() { dst.Runtime.Concurrency = src.Runtime.Concurrency }},
		{flags.FlagTimeout, func() { dst.Runtime.Timeout = src.Runtime.Timeout }},
		{flags.FlagStrict, func() { dst.Runtime.Strict = src.Runtime.Strict }},
	}
	for _, o := range overlays {
		if changed(o.name) {
			o.apply()
		}
	}
}

// addSourceFlags registers the flags that select operations.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCfg.Source.BasePath, flags.FlagBasePath, flagCfg.Source.BasePath, "Root folder the operation paths are relative to (env "+config.EnvBasePath+")")
	cmd.Flags().StringSliceVar(&flagCfg.Source.OperationPaths, flags.FlagOperations, nil, "Crash Move Folders to read, relative to --base-path (repeatable; comma-separated accepted)")
	cmd.Flags().StringVar(&flagCfg.Source.ProductID, flags.FlagProduct, flagCfg.Source.ProductID, "MapChef product id holding every layer (env "+config.EnvProductID+")")
	cmd.Flags().StringSliceVar(&flagCfg.Source.Include, flags.FlagInclude, nil, "Include pattern(s) (repeatable; comma-separated accepted). Go path.Match style; if pattern contains '/', matches the operation path, else matches the operation id")
	cmd.Flags().StringSliceVar(&flagCfg.Source.Exclude, flags.FlagExclude, nil, "Exclude pattern(s) (repeatable; comma-separated accepted). Same matching rules as --include")
	cmd.Flags().IntVar(&flagCfg.Runtime.Concurrency, flags.FlagConcurrency, flagCfg.Runtime.Concurrency, "Crash Move Folders read in parallel")
}
