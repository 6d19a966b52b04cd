package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Scaffold prepares the config directory for first use: the spool and
// training data directories, a known-entities template and default
// config values for keys not yet set. Existing files are left alone,
// so re-running init is safe.
func Scaffold(store driven.ConfigStore, settings Settings) error {
	dirs := []string{
		settings.SpoolDir,
		settings.DataDir,
		filepath.Dir(settings.FeedbackFile),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := writeKnownEntitiesTemplate(settings.KnownEntitiesFile); err != nil {
		return err
	}

	defaults := map[string]any{
		"spreadsheet.name":         settings.SpreadsheetName,
		"spreadsheet.worksheet":    settings.WorksheetName,
		"auth.credentials_file":    settings.CredentialsFile,
		"sync.lease_ttl":           settings.LeaseTTL.String(),
		"sync.lock_wait":           settings.LockWait.String(),
		"sync.timeout":             settings.SyncTimeout.String(),
		"retry.max_attempts":       int64(settings.MaxAttempts),
		"retry.base_delay":         settings.BaseDelay.String(),
		"retry.max_delay":          settings.MaxDelay.String(),
		"rate.requests_per_second": settings.RequestsPerSecond,
		"rate.burst":               int64(settings.Burst),
		"index.snapshot":           settings.SnapshotEnabled,
		"index.snapshot_max_age":   settings.SnapshotMaxAge.String(),
		"drift.enabled":            settings.DriftEnabled,
		"drift.interval":           settings.DriftInterval.String(),
		"spool.dir":                settings.SpoolDir,
		"ingest.strict_vendors":    settings.StrictVendors,
		"paths.known_entities":     settings.KnownEntitiesFile,
		"paths.feedback_file":      settings.FeedbackFile,
		"paths.data_dir":           settings.DataDir,
	}
	for key, value := range defaults {
		if _, ok := store.Get(key); ok {
			continue
		}
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}

// writeKnownEntitiesTemplate seeds the known vendor codes file.
// Refuses to overwrite an existing file.
func writeKnownEntitiesTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	template := map[string]any{
		"vendors": map[string]string{
			"ACME": "Acme Corporation",
		},
	}
	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling known entities template: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
