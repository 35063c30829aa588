// Package cli wires the cobra commands that drive the export pipeline.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcline-labs/chartpress/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "chartpress",
	Short: "Export spreadsheet charts as dated PDF archives",
	Long: `chartpress renders the charts embedded in a Google Sheets spreadsheet
as single-page PDFs and archives them into date-partitioned Google
Drive folders, one destination folder per configured store.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the stores.toml config (default ~/.chartpress/stores.toml)")
}

// Execute runs the root command. Returns a non-nil error only for
// configuration-level failures or defects; per-store and per-chart
// export failures are reported in the summary and exit zero.
func Execute() error {
	return rootCmd.Execute()
}
