package cli

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine and index status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := syncService.Stats(ctx)
	if err != nil {
		return err
	}

	if statusJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Index ready:   %t\n", stats.IndexReady)
	cmd.Printf("Index size:    %d\n", stats.IndexSize)
	if stats.RemoteRows >= 0 {
		cmd.Printf("Remote rows:   %d\n", stats.RemoteRows)
	} else {
		cmd.Println("Remote rows:   unavailable")
	}
	if !stats.LastRebuild.IsZero() {
		cmd.Printf("Last rebuild:  %s\n", stats.LastRebuild.Format(time.RFC3339))
	}
	if stats.SnapshotAge > 0 {
		cmd.Printf("Snapshot age:  %s\n", stats.SnapshotAge.Round(time.Second))
	}

	if outcomeLog != nil {
		events, err := outcomeLog.Recent(ctx, 5)
		if err == nil && len(events) > 0 {
			cmd.Println("Recent outcomes:")
			for _, event := range events {
				if event.Status == domain.OutcomeFailed {
					cmd.Printf("  %s  %s %s (%s)\n",
						event.At.Format(time.RFC3339), event.UID, event.Status, event.Reason)
				} else {
					cmd.Printf("  %s  %s %s\n",
						event.At.Format(time.RFC3339), event.UID, event.Status)
				}
			}
		}
	}
	return nil
}
