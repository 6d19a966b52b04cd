package memory

import (
	"sync"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Ensure RowIndex implements the interface.
var _ driven.RowIndex = (*RowIndex)(nil)

// RowIndex is the in-memory uniqueness index: uid → cached remote row.
// It is a cache of the remote store, never authoritative; consumers
// re-validate against the store at the point of any write.
type RowIndex struct {
	mu    sync.RWMutex
	rows  map[string]domain.Row
	ready bool
}

// NewRowIndex creates an empty, not-yet-ready index.
func NewRowIndex() *RowIndex {
	return &RowIndex{
		rows: make(map[string]domain.Row),
	}
}

// Lookup returns the cached row for uid, if any.
func (i *RowIndex) Lookup(uid string) (domain.Row, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	row, ok := i.rows[uid]
	if !ok {
		return domain.Row{}, false
	}
	return row.Clone(), true
}

// Record stores or replaces the cached row for row.UID.
func (i *RowIndex) Record(row domain.Row) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.rows[row.UID] = row.Clone()
}

// Forget drops the entry for uid, if present.
func (i *RowIndex) Forget(uid string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.rows, uid)
}

// ReplaceAll swaps the whole index for rows and marks it ready.
// Later entries win when rows repeats a uid, matching sheet order
// semantics where the bottom-most row is the one an update targets.
func (i *RowIndex) ReplaceAll(rows []domain.Row) {
	fresh := make(map[string]domain.Row, len(rows))
	for _, row := range rows {
		fresh[row.UID] = row.Clone()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.rows = fresh
	i.ready = true
}

// Invalidate empties the index and marks it not ready.
func (i *RowIndex) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.rows = make(map[string]domain.Row)
	i.ready = false
}

// Ready reports whether the index has been populated since the last
// invalidation.
func (i *RowIndex) Ready() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ready
}

// Len returns the number of indexed uids.
func (i *RowIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.rows)
}

// Rows returns a copy of every cached row. Order is unspecified.
func (i *RowIndex) Rows() []domain.Row {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]domain.Row, 0, len(i.rows))
	for _, row := range i.rows {
		out = append(out, row.Clone())
	}
	return out
}
