package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rdsdash/internal/config"
	"rdsdash/internal/flags"
	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
	"rdsdash/internal/store"
)

var (
	historyDB     string
	historyLimit  int
	historyPerDay bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List exports recorded in the run history",
	Long: `List the exports recorded by 'rdsdash export --history', newest first.

The database is taken from --history, or from output.history in --config.

Examples:
	# The last 20 runs
	rdsdash history --history runs.db

	# The last run of every export date, as published to the dated sheets
	rdsdash history --config rdsdash.yaml --per-day

	# Re-check a stored run and list its failing layers
	rdsdash history show --history runs.db 6f1c2a0e-...
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var runs []store.Run
		if historyPerDay {
			runs, err = st.LatestPerDay(cmd.Context())
			if err == nil && historyLimit > 0 && len(runs) > historyLimit {
				runs = runs[:historyLimit]
			}
		} else {
			runs, err = st.Runs(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Re-check a stored export and list its failing layers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		runID := args[0]
		snap, err := st.Snapshot(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if err := snapshot.Check(snap); err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		results, err := st.Results(cmd.Context(), runID)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		printCheckedSnapshot(w, "run "+runID, snap)
		printFailing(w, snap, results)
		return nil
	},
}

// openHistory opens an existing history database. Opening never creates
// one, so a mistyped path is reported instead of yielding an empty history.
func openHistory(cmd *cobra.Command) (*store.Store, error) {
	path := historyDB
	if !cmd.Flags().Changed(flags.FlagHistory) && configPath != "" {
		cfg := config.New()
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
		path = cfg.Output.History
	}
	if path == "" {
		return nil, errors.New("history database required (--history or output.history)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("history database: %w", err)
	}
	return store.Open(path)
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%-36s  %-23s  %-10s  %10s  %6s\n", "RUN", "EXPORTED", "VERSION", "OPERATIONS", "LAYERS")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-23s  %-10s  %10d  %6d\n", r.ID, r.ExportDatetime, r.AppVersion, r.Operations, r.Layers)
	}
}

// printFailing lists the stored records that read Fail or Error, in
// collection order.
func printFailing(w io.Writer, snap *snapshot.Snapshot, results []store.Result) {
	n := 0
	for _, r := range results {
		if r.Result != records.ResultFail && r.Result != records.ResultError {
			continue
		}
		if n == 0 {
			fmt.Fprintln(w, "Failing layers:")
		}
		n++
		fmt.Fprintf(w, "  %-6s %-12s %s (%s)\n", snap.ResultLabel(r.Result), r.OperationID, r.LayerID, snap.CategoryLabel(r.Category))
	}
	if n == 0 {
		fmt.Fprintln(w, "No failing layers.")
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.PersistentFlags().StringVar(&historyDB, flags.FlagHistory, "", "SQLite history database written by 'export --history'")
	historyCmd.Flags().IntVar(&historyLimit, flags.FlagLimit, 20, "Number of runs to list (0 lists all)")
	historyCmd.Flags().BoolVar(&historyPerDay, flags.FlagPerDay, false, "Only list the last run of each export date")
}
