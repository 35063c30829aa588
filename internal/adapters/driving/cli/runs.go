package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcline-labs/chartpress/internal/adapters/driven/storage/sqlite"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent export runs from the local ledger",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ledger, err := sqlite.NewLedger("")
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	runs, err := ledger.List(context.Background(), flagRunsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		cmd.Printf("%s  %s  %3d ok  %3d failed  (%s, %s)\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.DateKey,
			r.Succeeded,
			r.Failed,
			r.SpreadsheetID,
			shortID(r.ID),
		)
	}
	return nil
}

// shortID abbreviates a run id for display. Ids shorter than the
// abbreviation (a hand-edited or damaged ledger) pass through whole.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
