package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild-index",
	Short: "Rebuild the local row index from the spreadsheet",
	Long: `Discards the cached uid index and re-reads every row from the
remote worksheet. Useful after heavy manual editing of the sheet.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), appSettings.SyncTimeout)
	defer cancel()

	cmd.Println("Rebuilding index from remote rows...")
	if err := syncService.RebuildIndex(ctx); err != nil {
		return err
	}

	stats, err := syncService.Stats(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Index rebuilt: %d rows.\n", stats.IndexSize)
	return nil
}
