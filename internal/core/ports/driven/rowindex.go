package driven

import "github.com/daviidwuu/invoiceAI/internal/core/domain"

// RowIndex answers "does this uid already have a row, and where" in
// O(1) after an O(rows) rebuild. It is a cache, never authoritative:
// the orchestrator tolerates stale or missing entries and re-validates
// every decision at the point of the remote write.
//
// Implementations must be safe for concurrent use. Handed-out rows
// must be copies; callers may not be able to mutate cached state.
type RowIndex interface {
	// Lookup returns the cached row for uid, if any.
	Lookup(uid string) (domain.Row, bool)

	// Record stores or replaces the cached row for row.UID.
	Record(row domain.Row)

	// Forget drops the entry for uid, if present.
	Forget(uid string)

	// ReplaceAll swaps the whole index for rows and marks it ready.
	ReplaceAll(rows []domain.Row)

	// Invalidate empties the index and marks it not ready, forcing the
	// next consumer to rebuild from the remote store.
	Invalidate()

	// Ready reports whether a rebuild (or snapshot seed) has populated
	// the index since the last invalidation.
	Ready() bool

	// Len returns the number of indexed uids.
	Len() int

	// Rows returns a copy of every cached row, for snapshots and
	// inspection. Order is unspecified.
	Rows() []domain.Row
}
