package driving

import (
	"context"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// Syncer is the engine's sole entry point: it turns records into
// correct, deduplicated rows in the remote store. Calls are
// synchronous from the caller's perspective; the overall budget for a
// call travels on ctx, and callers that abandon a call early are
// covered by lease expiry.
type Syncer interface {
	// Sync upserts one record and returns its outcome. The returned
	// error is non-nil exactly when the outcome status is failed, so
	// callers may branch on either.
	Sync(ctx context.Context, rec domain.Record) (domain.Outcome, error)

	// SyncBatch syncs records in order, one outcome per record, and
	// joins the individual errors. It does not stop at the first
	// failure.
	SyncBatch(ctx context.Context, recs []domain.Record) ([]domain.Outcome, error)

	// RebuildIndex re-reads the whole remote store into the uniqueness
	// index under the whole-store lease. Callable on startup or on
	// suspected drift.
	RebuildIndex(ctx context.Context) error

	// EnsureIndex makes the index ready: seeds it from a fresh
	// snapshot when one exists, otherwise falls back to RebuildIndex.
	EnsureIndex(ctx context.Context) error

	// Stats reports the engine's current view of itself.
	Stats(ctx context.Context) (EngineStats, error)
}

// EngineStats is a point-in-time snapshot of engine state for status
// output and drift probes.
type EngineStats struct {
	// IndexReady reports whether the uniqueness index is populated.
	IndexReady bool `json:"index_ready"`

	// IndexSize is the number of uids currently indexed.
	IndexSize int `json:"index_size"`

	// RemoteRows is the remote data row count at probe time. Negative
	// when the probe failed.
	RemoteRows int64 `json:"remote_rows"`

	// LastRebuild is when the index was last rebuilt or seeded.
	LastRebuild time.Time `json:"last_rebuild"`

	// SnapshotAge is the age of the persisted snapshot, zero when
	// snapshots are disabled or absent.
	SnapshotAge time.Duration `json:"snapshot_age_ns,omitempty"`
}
