package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

var (
	syncFormat        string
	syncStrictVendors bool
	syncTimeout       time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync [files...]",
	Short: "Synchronise record files to the spreadsheet",
	Long: `Parses record files (TSV, JSON Lines or XLSX) and upserts each
record into the shared worksheet. Records that already match their
remote row are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFormat, "format", "",
		"force the input format (tsv, jsonl or xlsx) instead of using the file extension")
	syncCmd.Flags().BoolVar(&syncStrictVendors, "strict-vendors", false,
		"reject records with vendor codes missing from the known-entities file")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 0,
		"overall deadline for the run (0 uses the configured default)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	timeout := syncTimeout
	if timeout <= 0 {
		timeout = appSettings.SyncTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	parser := newParser(syncStrictVendors || appSettings.StrictVendors)

	var (
		totals  = map[domain.OutcomeStatus]int{}
		failed  int
		runErrs []error
	)
	for _, path := range args {
		var records []domain.Record
		var err error
		if syncFormat != "" {
			records, err = parser.ParseFileAs(path, syncFormat)
		} else {
			records, err = parser.ParseFile(path)
		}
		if err != nil {
			return err
		}
		cmd.Printf("Syncing %d records from %s...\n", len(records), path)

		outcomes, err := syncService.SyncBatch(ctx, records)
		if err != nil {
			runErrs = append(runErrs, err)
		}
		for _, outcome := range outcomes {
			totals[outcome.Status]++
			if outcome.Status == domain.OutcomeFailed {
				failed++
				cmd.Printf("  %s: failed (%s): %s\n", outcome.UID, outcome.Reason, outcome.Message)
			} else {
				cmd.Printf("  %s: %s (row %d)\n", outcome.UID, outcome.Status, outcome.RowIndex)
			}
		}
	}

	cmd.Printf("Done: %d created, %d updated, %d unchanged, %d failed.\n",
		totals[domain.OutcomeCreated], totals[domain.OutcomeUpdated],
		totals[domain.OutcomeUnchanged], failed)

	if len(runErrs) > 0 {
		return fmt.Errorf("%d records failed to sync", failed)
	}
	return nil
}
