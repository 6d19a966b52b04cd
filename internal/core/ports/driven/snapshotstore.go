package driven

import (
	"context"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// SnapshotStore persists a copy of the uniqueness index between runs
// so startup can skip the full remote read. Purely an optimisation:
// the engine must behave identically (if slower) with a nil
// SnapshotStore, and a snapshot may be deleted at any time.
type SnapshotStore interface {
	// ReplaceAll atomically replaces the snapshot with rows.
	ReplaceAll(ctx context.Context, rows []domain.Row) error

	// Upsert stores or updates a single row in the snapshot.
	Upsert(ctx context.Context, row domain.Row) error

	// Delete removes the snapshot entry for uid, if present.
	Delete(ctx context.Context, uid string) error

	// LoadAll returns the snapshot rows and when the snapshot was last
	// written. Returns domain.ErrNotFound if no snapshot exists.
	LoadAll(ctx context.Context) ([]domain.Row, time.Time, error)

	// Clear drops the snapshot entirely.
	Clear(ctx context.Context) error
}
