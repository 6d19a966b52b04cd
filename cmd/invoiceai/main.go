package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/auth"
	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/config/file"
	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/feedback"
	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/storage/memory"
	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/storage/sqlite"
	"github.com/daviidwuu/invoiceAI/internal/adapters/driving/cli"
	"github.com/daviidwuu/invoiceAI/internal/backoff"
	"github.com/daviidwuu/invoiceAI/internal/connectors/sheets"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
	"github.com/daviidwuu/invoiceAI/internal/core/services"
	"github.com/daviidwuu/invoiceAI/internal/ingest"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	configStore, err := file.NewConfigStore(file.ConfigDir())
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := file.LoadSettings(configStore)
	if settings.Verbose {
		logger.SetVerbose(true)
	}
	if settings.LogFile != "" {
		f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	provider := auth.NewServiceAccountProvider(settings.CredentialsFile)
	client, err := sheets.NewClient(ctx, provider, sheets.Config{
		SpreadsheetID:   settings.SpreadsheetID,
		SpreadsheetName: settings.SpreadsheetName,
		WorksheetName:   settings.WorksheetName,
		ReadLimit: &sheets.RateLimitConfig{
			RequestsPerSecond: settings.RequestsPerSecond,
			BurstSize:         settings.Burst,
		},
		WriteLimit: &sheets.RateLimitConfig{
			RequestsPerSecond: settings.RequestsPerSecond,
			BurstSize:         settings.Burst,
		},
	})
	if err != nil {
		return fmt.Errorf("creating sheets client: %w", err)
	}

	index := memory.NewRowIndex()
	leases := memory.NewLeaseManager()

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer store.Close()

	var snapshot driven.SnapshotStore
	if settings.SnapshotEnabled {
		snapshot = store.SnapshotStore()
	}
	sink := feedback.NewFanOut(
		store.OutcomeLog(),
		feedback.NewJSONLSink(settings.FeedbackFile),
	)

	syncService := services.NewSyncService(client, index, leases, snapshot, sink, services.SyncConfig{
		LeaseTTL: settings.LeaseTTL,
		LockWait: settings.LockWait,
		Retry: backoff.Policy{
			MaxAttempts: settings.MaxAttempts,
			Base:        settings.BaseDelay,
			Max:         settings.MaxDelay,
		},
		SnapshotMaxAge: settings.SnapshotMaxAge,
	})

	if settings.DriftEnabled {
		watcher := services.NewDriftWatcher(client, index, syncService, settings.DriftInterval)
		go func() {
			if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Drift watcher stopped: %v", err)
			}
		}()
		defer watcher.Stop()
	}

	var vendors *ingest.VendorRegistry
	if reg, err := ingest.LoadVendors(settings.KnownEntitiesFile); err == nil {
		vendors = reg
	} else {
		logger.Debug("Known entities unavailable: %v", err)
	}

	cli.SetServices(syncService, client, configStore, vendors, settings)
	cli.SetOutcomeHistory(store.OutcomeLog())
	return cli.Execute()
}
