package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Settings is the typed view of the engine's configuration, resolved
// from the config store with defaults applied. Keys use dot notation
// matching the TOML sections.
type Settings struct {
	SpreadsheetID   string
	SpreadsheetName string
	WorksheetName   string

	CredentialsFile string

	LeaseTTL    time.Duration
	LockWait    time.Duration
	SyncTimeout time.Duration

	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	RequestsPerSecond float64
	Burst             int

	SnapshotEnabled bool
	SnapshotMaxAge  time.Duration

	DriftEnabled  bool
	DriftInterval time.Duration

	SpoolDir      string
	StrictVendors bool

	KnownEntitiesFile string
	FeedbackFile      string
	DataDir           string

	LogFile string
	Verbose bool
}

// Defaults returns the settings used when the config file is absent or
// silent on a key.
func Defaults() Settings {
	base := ConfigDir()
	return Settings{
		SpreadsheetName:   "InvoiceAI Records",
		WorksheetName:     "Records",
		CredentialsFile:   filepath.Join(base, "credentials.json"),
		LeaseTTL:          30 * time.Second,
		LockWait:          10 * time.Second,
		SyncTimeout:       2 * time.Minute,
		MaxAttempts:       5,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		RequestsPerSecond: 1,
		Burst:             5,
		SnapshotEnabled:   true,
		SnapshotMaxAge:    24 * time.Hour,
		DriftEnabled:      false,
		DriftInterval:     5 * time.Minute,
		SpoolDir:          filepath.Join(base, "spool"),
		StrictVendors:     false,
		KnownEntitiesFile: filepath.Join(base, "known_entities.json"),
		FeedbackFile:      filepath.Join(base, "training_data", "feedback.jsonl"),
		DataDir:           filepath.Join(base, "data"),
	}
}

// ConfigDir returns the invoiceai configuration directory,
// ~/.invoiceai, falling back to a relative directory when the home
// directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".invoiceai"
	}
	return filepath.Join(home, ".invoiceai")
}

// LoadSettings resolves settings from the store, applying defaults for
// missing keys.
func LoadSettings(store driven.ConfigStore) Settings {
	s := Defaults()

	if v := store.GetString("spreadsheet.id"); v != "" {
		s.SpreadsheetID = v
	}
	if v := store.GetString("spreadsheet.name"); v != "" {
		s.SpreadsheetName = v
	}
	if v := store.GetString("spreadsheet.worksheet"); v != "" {
		s.WorksheetName = v
	}
	if v := store.GetString("auth.credentials_file"); v != "" {
		s.CredentialsFile = v
	}
	if v := store.GetDuration("sync.lease_ttl"); v > 0 {
		s.LeaseTTL = v
	}
	if v := store.GetDuration("sync.lock_wait"); v > 0 {
		s.LockWait = v
	}
	if v := store.GetDuration("sync.timeout"); v > 0 {
		s.SyncTimeout = v
	}
	if v := store.GetInt("retry.max_attempts"); v > 0 {
		s.MaxAttempts = v
	}
	if v := store.GetDuration("retry.base_delay"); v > 0 {
		s.BaseDelay = v
	}
	if v := store.GetDuration("retry.max_delay"); v > 0 {
		s.MaxDelay = v
	}
	if v := store.GetFloat("rate.requests_per_second"); v > 0 {
		s.RequestsPerSecond = v
	}
	if v := store.GetInt("rate.burst"); v > 0 {
		s.Burst = v
	}
	if _, ok := store.Get("index.snapshot"); ok {
		s.SnapshotEnabled = store.GetBool("index.snapshot")
	}
	if v := store.GetDuration("index.snapshot_max_age"); v > 0 {
		s.SnapshotMaxAge = v
	}
	if _, ok := store.Get("drift.enabled"); ok {
		s.DriftEnabled = store.GetBool("drift.enabled")
	}
	if v := store.GetDuration("drift.interval"); v > 0 {
		s.DriftInterval = v
	}
	if v := store.GetString("spool.dir"); v != "" {
		s.SpoolDir = v
	}
	if _, ok := store.Get("ingest.strict_vendors"); ok {
		s.StrictVendors = store.GetBool("ingest.strict_vendors")
	}
	if v := store.GetString("paths.known_entities"); v != "" {
		s.KnownEntitiesFile = v
	}
	if v := store.GetString("paths.feedback_file"); v != "" {
		s.FeedbackFile = v
	}
	if v := store.GetString("paths.data_dir"); v != "" {
		s.DataDir = v
	}
	s.LogFile = store.GetString("log.file")
	s.Verbose = store.GetBool("log.verbose")

	return s
}
