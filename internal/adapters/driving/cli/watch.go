package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daviidwuu/invoiceAI/internal/adapters/driving/spool"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch the spool directory and sync files as they arrive",
	Long: `Watches the spool directory for record files. Each file dropped
there is parsed, synced, and renamed with a ".synced" or ".failed"
suffix. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	dir := appSettings.SpoolDir
	if len(args) > 0 {
		dir = args[0]
	}

	watcher, err := spool.NewWatcher(dir, newParser(appSettings.StrictVendors), syncService)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)...\n", dir)
	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
