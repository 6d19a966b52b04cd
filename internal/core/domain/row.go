package domain

import (
	"slices"
	"time"
)

// Row is the persisted counterpart of a Record: one line of the remote
// worksheet as last written. Rows are created on the first successful
// append for a UID and updated in place thereafter; only an external
// or manual edit ever removes one.
type Row struct {
	// Index is the 1-based sheet row number. The header occupies row 1,
	// so data rows start at 2. Stable until the row is deleted or the
	// sheet is compacted externally.
	Index int64

	// UID mirrors the record's business key.
	UID string

	// Values holds the cell values in canonical column order,
	// including the uid cell.
	Values []string

	// SyncedAt is when the engine last confirmed a write of this row.
	// Zero for rows only ever observed by a read.
	SyncedAt time.Time
}

// Matches reports whether the row's cells equal the record's canonical
// values. A match means a sync of rec would be a no-op.
func (r Row) Matches(rec Record) bool {
	return slices.Equal(r.Values, rec.Values())
}

// Clone returns a deep copy of the row. Stores hand out clones so
// callers can never alias cached state.
func (r Row) Clone() Row {
	c := r
	c.Values = slices.Clone(r.Values)
	return c
}
