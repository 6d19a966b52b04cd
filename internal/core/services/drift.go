package services

import (
	"context"
	"sync"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driving"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

// DriftWatcher periodically compares the remote row count against the
// index and triggers a rebuild when they diverge: the signature of
// rows added or removed outside this engine. Purely a freshness
// optimisation: correctness never depends on it, because every write
// re-verifies against the remote state anyway.
type DriftWatcher struct {
	store    driven.RowStore
	index    driven.RowIndex
	syncer   driving.Syncer
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewDriftWatcher creates a watcher probing every interval.
func NewDriftWatcher(
	store driven.RowStore,
	index driven.RowIndex,
	syncer driving.Syncer,
	interval time.Duration,
) *DriftWatcher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &DriftWatcher{
		store:    store,
		index:    index,
		syncer:   syncer,
		interval: interval,
	}
}

// Start begins the watch loop. This method blocks until Stop is called
// or ctx is cancelled.
func (w *DriftWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

// Stop gracefully shuts down the watcher.
func (w *DriftWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
}

// probe runs one drift check.
func (w *DriftWatcher) probe(ctx context.Context) {
	if !w.index.Ready() {
		return
	}

	count, err := w.store.RowCount(ctx)
	if err != nil {
		logger.Warn("Drift probe failed: %v", err)
		return
	}

	if int(count) == w.index.Len() {
		return
	}

	logger.Info("Drift detected: remote has %d rows, index has %d; rebuilding", count, w.index.Len())
	if err := w.syncer.RebuildIndex(ctx); err != nil {
		logger.Error("Drift rebuild failed: %v", err)
	}
}
