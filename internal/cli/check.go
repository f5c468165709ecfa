package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

var checkCmd = &cobra.Command{
	Use:   "check <export.json>",
	Short: "Check an export file",
	Long: `Decode an export file and verify that its views agree with each other.

The export version is read first; files written by a newer or older export
format are rejected before anything else is decoded.

Examples:
  rdsdash check export.json
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		snap, err := snapshot.Decode(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := snapshot.Check(snap); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		printCheckedSnapshot(cmd.OutOrStdout(), args[0], snap)
		return nil
	},
}

// printCheckedSnapshot prints the summary of a snapshot that passed
// snapshot.Check.
func printCheckedSnapshot(w io.Writer, name string, snap *snapshot.Snapshot) {
	fmt.Fprintf(w, "%s: OK (export version %d, exported %s by %s)\n",
		name, snap.Meta.ExportVersion, snap.Meta.ExportDatetime, snap.Meta.AppVersion)
	fmt.Fprintf(w, "%d operations, %d layers\n", len(snap.Data.Operations), snap.Len())
	for _, r := range records.AllResults() {
		fmt.Fprintf(w, "  %-14s %d\n", snap.ResultLabel(r), snap.Data.SummaryStatistics.TotalsByResult[r])
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
