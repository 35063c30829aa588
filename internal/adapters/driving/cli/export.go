package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/arcline-labs/chartpress/internal/adapters/driven/config/file"
	"github.com/arcline-labs/chartpress/internal/adapters/driven/storage/sqlite"
	"github.com/arcline-labs/chartpress/internal/connectors/google"
	gdrive "github.com/arcline-labs/chartpress/internal/connectors/google/drive"
	gsheets "github.com/arcline-labs/chartpress/internal/connectors/google/sheets"
	gslides "github.com/arcline-labs/chartpress/internal/connectors/google/slides"
	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
	"github.com/arcline-labs/chartpress/internal/core/services"
	"github.com/arcline-labs/chartpress/internal/logger"
)

// Environment variables read once at startup. CHARTPRESS_SPREADSHEET_ID
// and CHARTPRESS_CREDENTIALS are required (the former can come from the
// --spreadsheet flag instead); the rest are optional overrides.
const (
	envSpreadsheetID = "CHARTPRESS_SPREADSHEET_ID"
	envCredentials   = "CHARTPRESS_CREDENTIALS"
	envConcurrency   = "CHARTPRESS_CONCURRENCY"
	envRetryMaxWait  = "CHARTPRESS_RETRY_MAX_WAIT_MS"
)

var (
	flagSpreadsheet string
	flagStrategy    string
	flagConcurrency int
	flagDate        string
	flagDryRun      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every store's charts to dated PDF folders",
	Long: `Runs the export pipeline: enumerates the charts of every configured
store, renders each as a fitted single-page PDF through a scratch
presentation, and uploads it under the store's dated folder.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagSpreadsheet, "spreadsheet", "", "source spreadsheet id (overrides "+envSpreadsheetID+")")
	exportCmd.Flags().StringVar(&flagStrategy, "strategy", "", "scratch document strategy: reuse or perchart")
	exportCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "max charts in flight per store")
	exportCmd.Flags().StringVar(&flagDate, "date", "", "date key override, YYYY-MM-DD (default today UTC)")
	exportCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "enumerate charts without rendering or uploading")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, credsPath, err := buildExportConfig()
	if err != nil {
		return err
	}

	ts, err := google.TokenSourceFromFile(ctx, credsPath)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	sheetsSvc, err := google.NewSheetsService(ctx, ts)
	if err != nil {
		return fmt.Errorf("sheets service: %w", err)
	}
	slidesSvc, err := google.NewSlidesService(ctx, ts)
	if err != nil {
		return fmt.Errorf("slides service: %w", err)
	}
	driveSvc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return fmt.Errorf("drive service: %w", err)
	}

	// The ledger is a convenience record; a broken local disk must
	// not block exports.
	var runLedger driven.RunLedger
	if ledger, err := sqlite.NewLedger(""); err != nil {
		logger.Warn("run ledger unavailable: %v", err)
	} else {
		defer ledger.Close()
		runLedger = ledger
	}

	exporter := services.NewExporter(
		*cfg,
		gsheets.NewGraph(sheetsSvc),
		gslides.NewService(slidesSvc, driveSvc),
		gdrive.NewStore(driveSvc),
		runLedger,
		cfg.MarginPT*gslides.EMUPerPoint,
	)

	report, err := exporter.Run(ctx)
	if err != nil {
		if errors.Is(err, google.ErrUnauthorized) || errors.Is(err, google.ErrForbidden) {
			return fmt.Errorf("export failed, check the service account's access to the spreadsheet: %w", err)
		}
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Exported %d charts (%d failed, %d stores skipped) for %s\n",
		report.Succeeded(), report.Failures(), len(report.SkippedStores), report.DateKey)
	for _, r := range report.Results {
		if r.Failed() {
			cmd.Printf("  FAILED %s: %s\n", r.Filename, r.Reason)
		}
	}
	// Verbose mode also lists the successful uploads.
	if logger.IsVerbose() {
		for _, r := range report.Results {
			if !r.Failed() {
				cmd.Printf("  ok %s\n", r.Filename)
			}
		}
	}
	return nil
}

// buildExportConfig merges flags, environment and the TOML store table
// (in that precedence order) into a validated run configuration. Any
// missing required value is a fatal error before the pipeline runs.
func buildExportConfig() (*domain.ExportConfig, string, error) {
	configPath := flagConfig
	if configPath == "" {
		var err error
		configPath, err = configfile.DefaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("locate config: %w", err)
		}
	}
	stores, err := configfile.Load(configPath)
	if err != nil {
		return nil, "", err
	}

	credsPath := os.Getenv(envCredentials)
	if credsPath == "" {
		return nil, "", fmt.Errorf("%w: %s is not set", domain.ErrInvalidConfig, envCredentials)
	}

	spreadsheetID := flagSpreadsheet
	if spreadsheetID == "" {
		spreadsheetID = os.Getenv(envSpreadsheetID)
	}
	if spreadsheetID == "" {
		return nil, "", fmt.Errorf("%w: set %s or pass --spreadsheet", domain.ErrInvalidConfig, envSpreadsheetID)
	}

	strategyName := flagStrategy
	if strategyName == "" {
		strategyName = stores.Defaults.Strategy
	}
	strategy, err := domain.ParseStrategy(strategyName)
	if err != nil {
		return nil, "", err
	}

	concurrency := flagConcurrency
	if concurrency == 0 {
		concurrency = envInt(envConcurrency)
	}
	if concurrency == 0 {
		concurrency = stores.Defaults.Concurrency
	}
	if concurrency == 0 {
		concurrency = domain.DefaultConcurrency
	}

	retry := domain.DefaultRetry()
	if stores.Defaults.RetryAttempts > 0 {
		retry.Attempts = stores.Defaults.RetryAttempts
	}
	if ms := envInt(envRetryMaxWait); ms > 0 {
		retry.MaxWait = time.Duration(ms) * time.Millisecond
	}

	dateKey := flagDate
	if dateKey == "" {
		dateKey = time.Now().UTC().Format("2006-01-02")
	}

	cfg := &domain.ExportConfig{
		SpreadsheetID: spreadsheetID,
		Stores:        stores.Stores,
		Strategy:      strategy,
		Concurrency:   concurrency,
		Retry:         retry,
		MarginPT:      stores.Defaults.MarginPT,
		DateKey:       dateKey,
		DryRun:        flagDryRun,
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, credsPath, nil
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("ignoring %s=%q: not a non-negative integer", key, v)
		return 0
	}
	return n
}
