package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rdsdash/internal/collector"
	"rdsdash/internal/config"
	"rdsdash/internal/logging"
	"rdsdash/internal/records"
)

var operationsListQuiet bool

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "Inspect configured operations",
	Long: `Inspect the operations rdsdash would export.

Examples:
  # List configured operations with their layer results
  rdsdash operations list --config rdsdash.yaml
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var operationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured operations",
	Long: `Read every configured Crash Move Folder and list the operations found, in
configuration order. Folders that are missing or invalid are reported on
stderr and skipped, exactly as an export would skip them.

Examples:
  rdsdash operations list --base-path /mnt/drive --operations ops/2021-bgd-001
  rdsdash operations list --config rdsdash.yaml -q

Output:
  A vertical list of operations:
    ----------------------------------------
    OPERATION: {ID}
    ----------------------------------------
    Name:     {NAME}
    Country:  {COUNTRY} ({ISO3})
    Folder:   {PATH}
    Source:   {MAPCHEF OUTPUT FILE}
    Layers:   {COUNT} ({COUNT PER RESULT})
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, os.Getenv)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Runtime.Verbose)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		return listOperations(cmd, cfg, collector.New(os.DirFS(cfg.Source.BasePath), collectorOptions(cfg), logger))
	},
}

func collectorOptions(cfg *config.Config) collector.Options {
	return collector.Options{
		Paths:       cfg.Source.OperationPaths,
		ProductID:   cfg.Source.ProductID,
		Filter:      collector.Filter{Include: cfg.Source.Include, Exclude: cfg.Source.Exclude},
		Concurrency: cfg.Runtime.Concurrency,
	}
}

func listOperations(cmd *cobra.Command, cfg *config.Config, col *collector.Collector) error {
	filter := collector.Filter{Include: cfg.Source.Include, Exclude: cfg.Source.Exclude}
	for _, p := range cfg.Source.OperationPaths {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		res, err := col.ReadOperation(cmd.Context(), p)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", p, err)
			continue
		}
		if !filter.Allows(res.Operation.ID, p) {
			continue
		}
		if operationsListQuiet {
			fmt.Fprintln(cmd.OutOrStdout(), res.Operation.ID)
			continue
		}
		printOperation(cmd.OutOrStdout(), p, res)
	}
	return nil
}

func printOperation(w io.Writer, dir string, res *collector.OperationResult) {
	bold := color.New(color.Bold)
	op := res.Operation
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "OPERATION: %s\n", op.ID)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Name:     %s\n", op.Name)
	fmt.Fprintf(w, "Country:  %s (%s)\n", op.AffectedCountryName, op.AffectedCountryISO3)
	fmt.Fprintf(w, "Folder:   %s\n", dir)
	if res.Product != nil {
		fmt.Fprintf(w, "Source:   %s\n", res.Product.File)
	} else {
		fmt.Fprintln(w, "Source:   no MapChef output (planned layers)")
	}

	counts := make(map[records.Result]int)
	for _, r := range res.Records {
		counts[r.Result]++
	}
	fmt.Fprintf(w, "Layers:   %d", len(res.Records))
	sep := " ("
	for _, r := range records.AllResults() {
		if n := counts[r]; n > 0 {
			fmt.Fprintf(w, "%s%s %d", sep, r, n)
			sep = ", "
		}
	}
	if sep == ", " {
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(operationsCmd)
	operationsCmd.AddCommand(operationsListCmd)
	addSourceFlags(operationsListCmd)
	operationsListCmd.Flags().BoolVarP(&operationsListQuiet, "quiet", "q", false, "Only print operation ids")
}
