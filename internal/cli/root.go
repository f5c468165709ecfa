package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rdsdash/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
)

// exitFunc terminates the process with an exit code; tests replace it.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "rdsdash",
	Short: "Export Rolling Data Scramble dashboard results",
	Long: `rdsdash reads Rolling Data Scramble results out of Crash Move Folders and
exports them as a versioned snapshot for the RDS dashboard.

Each configured operation folder is read for its event description and the
latest MapChef output of the all-products product. Every layer becomes one
verdict: Pass, Warning, Fail, Error, or Not Evaluated.

Examples:
	# Show available commands and global flags
	rdsdash --help

	# Export two operations to export.json
	rdsdash export --base-path /mnt/drive --operations ops/2021-bgd-001,ops/2021-moz-002

	# Check an export file
	rdsdash check export.json

	# List runs recorded with --history
	rdsdash history --history runs.db

	# Print build info
	rdsdash version

Configuration:
	Settings come from defaults, then --config (YAML), then APP_RDS_DASHBOARD_*
	environment variables, then flags. Logs go to stderr; stdout carries only
	command output.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, flags.FlagConfig, "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, flags.FlagVerbose, false, "Enable debug logging (prints every API call and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
