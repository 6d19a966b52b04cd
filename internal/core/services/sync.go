package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daviidwuu/invoiceAI/internal/backoff"
	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driving"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.Syncer = (*SyncService)(nil)

// SyncConfig bounds the blocking behaviour of one sync call.
type SyncConfig struct {
	// LeaseTTL is the lifetime of a uid lease. Must comfortably
	// exceed the retry schedule's worst case so a lease never lapses
	// mid-write.
	LeaseTTL time.Duration

	// LockWait is how long Acquire may wait on a contended lease
	// before the sync fails as contended.
	LockWait time.Duration

	// Retry is the backoff policy wrapped around remote operations.
	Retry backoff.Policy

	// SnapshotMaxAge is the oldest snapshot EnsureIndex will seed the
	// index from; older ones trigger a full rebuild instead.
	SnapshotMaxAge time.Duration
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = 30 * time.Second
	}
	if c.LockWait <= 0 {
		c.LockWait = 10 * time.Second
	}
	if c.SnapshotMaxAge <= 0 {
		c.SnapshotMaxAge = 24 * time.Hour
	}
	return c
}

// SyncService is the synchronisation orchestrator: the sole entry
// point turning records into deduplicated remote rows. Each call moves
// through index lookup, locking, the guarded upsert, index update and
// release; uid uniqueness is enforced by the store verifying at the
// point of the write, never by trusting the index.
type SyncService struct {
	store    driven.RowStore
	index    driven.RowIndex
	leases   driven.LeaseManager
	snapshot driven.SnapshotStore // optional
	sink     driven.OutcomeSink   // optional
	cfg      SyncConfig

	mu          sync.RWMutex
	lastRebuild time.Time
}

// NewSyncService creates a sync service. snapshot and sink are
// optional; pass nil to run without persisted snapshots or an outcome
// stream.
func NewSyncService(
	store driven.RowStore,
	index driven.RowIndex,
	leases driven.LeaseManager,
	snapshot driven.SnapshotStore,
	sink driven.OutcomeSink,
	cfg SyncConfig,
) *SyncService {
	return &SyncService{
		store:    store,
		index:    index,
		leases:   leases,
		snapshot: snapshot,
		sink:     sink,
		cfg:      cfg.withDefaults(),
	}
}

// Sync upserts one record. The returned error is non-nil exactly when
// the outcome status is failed.
func (s *SyncService) Sync(ctx context.Context, rec domain.Record) (domain.Outcome, error) {
	started := time.Now()

	outcome, err := s.sync(ctx, rec)
	outcome.Duration = time.Since(started)
	s.publish(ctx, outcome)

	if err != nil {
		logger.Error("Sync %s failed (%s): %v", rec.UID, outcome.Reason, err)
	} else {
		logger.Info("Sync %s: %s (row %d)", rec.UID, outcome.Status, outcome.RowIndex)
	}
	return outcome, err
}

func (s *SyncService) sync(ctx context.Context, rec domain.Record) (domain.Outcome, error) {
	// 1. Validate. Invalid records are permanent failures; resubmitting
	// the same record cannot help.
	if err := rec.Validate(); err != nil {
		err = domain.Permanent("sync.validate", err)
		return domain.Failed(rec.UID, err), err
	}

	if !s.index.Ready() {
		if err := s.EnsureIndex(ctx); err != nil {
			return domain.Failed(rec.UID, err), err
		}
	}

	// 2. IndexLookup: optimistic, lease-free. Only used for logging;
	// the decision itself is re-derived under the lease.
	if cached, ok := s.index.Lookup(rec.UID); ok {
		logger.Debug("Sync %s: cached at row %d", rec.UID, cached.Index)
	}

	// 3. Locking: per-uid lease, wait bounded by LockWait. A held
	// lease surfaces as contended; the caller decides whether to
	// come back, the engine does not loop here.
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWait)
	defer cancel()
	lease, err := s.leases.Acquire(lockCtx, rec.UID, s.cfg.LeaseTTL)
	if err != nil {
		err = fmt.Errorf("acquire lease: %w", err)
		return domain.Failed(rec.UID, err), err
	}
	// Release always; expiry covers a crashed holder.
	defer func() {
		if err := s.leases.Release(lease); err != nil {
			logger.Warn("Release lease %s: %v", lease.Key, err)
		}
	}()

	// 4. Upserting, guarded by the retry controller.
	var (
		outcome  domain.Outcome
		attempts int
	)
	err = backoff.Retry(ctx, s.cfg.Retry, "upsert "+rec.UID, func(ctx context.Context) error {
		attempts++
		return s.upsert(ctx, rec, &outcome)
	})
	if err != nil {
		failed := domain.Failed(rec.UID, err)
		failed.Attempts = attempts
		return failed, err
	}

	outcome.Attempts = attempts
	return outcome, nil
}

// upsert performs one attempt of the append-or-update decision. Called
// under the uid's lease.
func (s *SyncService) upsert(ctx context.Context, rec domain.Record, outcome *domain.Outcome) error {
	cached, ok := s.index.Lookup(rec.UID)
	if !ok {
		return s.append(ctx, rec, outcome)
	}

	// Idempotence short-circuit: identical fields mean no remote
	// write, which also spares quota.
	if cached.Matches(rec) {
		*outcome = domain.Unchanged(rec.UID, cached.Index)
		return nil
	}

	row, err := s.store.Update(ctx, cached.Index, rec)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The row vanished or moved underneath the cache: an
			// external deletion or compaction. Drop the entry and
			// resolve as a create.
			logger.Warn("Cached row %d for %s is gone remotely; re-creating", cached.Index, rec.UID)
			s.index.Forget(rec.UID)
			s.forgetSnapshot(ctx, rec.UID)
			return s.append(ctx, rec, outcome)
		}
		return err
	}

	*outcome = domain.Updated(rec.UID, row.Index)
	s.recordRow(ctx, row)
	return nil
}

// append creates the row, falling back to an update when the store
// reports the uid already owns a row the index did not know about.
// That verification, not the cache, is what makes uid uniqueness hold
// under stale indexes and concurrent writers.
func (s *SyncService) append(ctx context.Context, rec domain.Record, outcome *domain.Outcome) error {
	row, err := s.store.Append(ctx, rec)
	if err != nil {
		var dup *domain.DuplicateRowError
		if !errors.As(err, &dup) {
			return err
		}

		logger.Info("Sync %s: index missed existing row %d; updating instead", rec.UID, dup.Row.Index)
		s.recordRow(ctx, dup.Row)

		if dup.Row.Matches(rec) {
			*outcome = domain.Unchanged(rec.UID, dup.Row.Index)
			return nil
		}
		updated, err := s.store.Update(ctx, dup.Row.Index, rec)
		if err != nil {
			return err
		}
		*outcome = domain.Updated(rec.UID, updated.Index)
		s.recordRow(ctx, updated)
		return nil
	}

	*outcome = domain.Created(rec.UID, row.Index)
	s.recordRow(ctx, row)
	return nil
}

// SyncBatch syncs records in order and joins the individual errors.
func (s *SyncService) SyncBatch(ctx context.Context, recs []domain.Record) ([]domain.Outcome, error) {
	outcomes := make([]domain.Outcome, 0, len(recs))
	var errs []error
	for _, rec := range recs {
		outcome, err := s.Sync(ctx, rec)
		outcomes = append(outcomes, outcome)
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", rec.UID, err))
		}
	}
	return outcomes, errors.Join(errs...)
}

// RebuildIndex re-reads the whole remote store into the index under
// the whole-store lease.
func (s *SyncService) RebuildIndex(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWait)
	defer cancel()
	lease, err := s.leases.AcquireAll(lockCtx, s.cfg.LeaseTTL)
	if err != nil {
		return fmt.Errorf("acquire store lease: %w", err)
	}
	defer func() {
		if err := s.leases.Release(lease); err != nil {
			logger.Warn("Release store lease: %v", err)
		}
	}()

	var rows []domain.Row
	err = backoff.Retry(ctx, s.cfg.Retry, "read all rows", func(ctx context.Context) error {
		var readErr error
		rows, readErr = s.store.ReadAll(ctx)
		return readErr
	})
	if err != nil {
		return fmt.Errorf("read remote rows: %w", err)
	}

	s.index.ReplaceAll(rows)
	s.setLastRebuild(time.Now())
	logger.Info("Index rebuilt: %d rows", len(rows))

	if s.snapshot != nil {
		if err := s.snapshot.ReplaceAll(ctx, rows); err != nil {
			// Snapshot trouble never fails a rebuild; it only costs
			// the next startup a full read.
			logger.Warn("Save index snapshot: %v", err)
		}
	}
	return nil
}

// EnsureIndex makes the index ready: seeded from a fresh snapshot when
// one exists, otherwise rebuilt from the remote store.
func (s *SyncService) EnsureIndex(ctx context.Context) error {
	if s.index.Ready() {
		return nil
	}

	if s.snapshot != nil {
		rows, writtenAt, err := s.snapshot.LoadAll(ctx)
		switch {
		case err == nil && len(rows) > 0 && time.Since(writtenAt) <= s.cfg.SnapshotMaxAge:
			s.index.ReplaceAll(rows)
			s.setLastRebuild(writtenAt)
			logger.Info("Index seeded from snapshot: %d rows (written %s)",
				len(rows), writtenAt.Format(time.RFC3339))
			return nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			logger.Warn("Load index snapshot: %v", err)
		}
	}

	return s.RebuildIndex(ctx)
}

// Stats reports the engine's current view of itself. The remote row
// count probe is best-effort; a failed probe reports -1.
func (s *SyncService) Stats(ctx context.Context) (driving.EngineStats, error) {
	stats := driving.EngineStats{
		IndexReady:  s.index.Ready(),
		IndexSize:   s.index.Len(),
		RemoteRows:  -1,
		LastRebuild: s.getLastRebuild(),
	}

	if count, err := s.store.RowCount(ctx); err == nil {
		stats.RemoteRows = count
	} else {
		logger.Warn("Probe remote row count: %v", err)
	}

	if s.snapshot != nil {
		if _, writtenAt, err := s.snapshot.LoadAll(ctx); err == nil {
			stats.SnapshotAge = time.Since(writtenAt)
		}
	}
	return stats, nil
}

// recordRow updates the index (under the caller's lease) and mirrors
// the row into the snapshot, best-effort.
func (s *SyncService) recordRow(ctx context.Context, row domain.Row) {
	s.index.Record(row)
	if s.snapshot != nil {
		if err := s.snapshot.Upsert(ctx, row); err != nil {
			logger.Warn("Snapshot upsert %s: %v", row.UID, err)
		}
	}
}

func (s *SyncService) forgetSnapshot(ctx context.Context, uid string) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Delete(ctx, uid); err != nil {
		logger.Warn("Snapshot delete %s: %v", uid, err)
	}
}

// publish emits the outcome event. Best-effort: a failing sink is
// logged and never fails the sync that produced the event.
func (s *SyncService) publish(ctx context.Context, outcome domain.Outcome) {
	if s.sink == nil {
		return
	}
	event := domain.OutcomeEvent{
		ID:      uuid.NewString(),
		At:      time.Now(),
		Outcome: outcome,
	}
	if err := s.sink.Publish(ctx, event); err != nil {
		logger.Warn("Publish outcome for %s: %v", outcome.UID, err)
	}
}

func (s *SyncService) setLastRebuild(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRebuild = t
}

func (s *SyncService) getLastRebuild() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRebuild
}
