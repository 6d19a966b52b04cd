// Package cli implements the invoiceai command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/config/file"
	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driving"
	"github.com/daviidwuu/invoiceAI/internal/ingest"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// OutcomeHistory serves recent sync outcomes for status output.
type OutcomeHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.OutcomeEvent, error)
}

// Services the commands depend on. Wired by the composition root
// before Execute; commands nil-check what they use.
var (
	syncService    driving.Syncer
	rowStore       driven.RowStore
	configStore    driven.ConfigStore
	vendorRegistry *ingest.VendorRegistry
	outcomeLog     OutcomeHistory
	appSettings    file.Settings
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "invoiceai",
	Short: "Sync invoice records to a shared spreadsheet",
	Long: `invoiceai synchronises locally extracted invoice records into a
shared Google Sheets worksheet, with duplicate protection, locking
between concurrent writers and automatic retries.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose || appSettings.Verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the wired application services. Call before
// Execute.
func SetServices(
	syncer driving.Syncer,
	store driven.RowStore,
	config driven.ConfigStore,
	vendors *ingest.VendorRegistry,
	settings file.Settings,
) {
	syncService = syncer
	rowStore = store
	configStore = config
	vendorRegistry = vendors
	appSettings = settings
}

// SetOutcomeHistory injects the audit log used by status. Optional.
func SetOutcomeHistory(history OutcomeHistory) {
	outcomeLog = history
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newParser(strict bool) *ingest.Parser {
	return ingest.NewParser(vendorRegistry, strict)
}
