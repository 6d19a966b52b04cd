package driven

import (
	"context"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// RowStore is the remote tabular store, exposed as typed row
// operations. Implementations authenticate, shape requests to the
// provider's quota, and classify every failure as transient or
// permanent via domain.SyncError; that classification is the contract
// the retry controller depends on.
//
// The store is dumb: no transactions and no native uniqueness. The
// uniqueness guarantee therefore lives at the write point: Append must
// verify the uid against the remote state and refuse (or undo) a write
// that would duplicate an existing row, reporting the surviving row
// through *domain.DuplicateRowError.
type RowStore interface {
	// ReadAll returns every data row in sheet order. Used for index
	// rebuilds and exports.
	ReadAll(ctx context.Context) ([]domain.Row, error)

	// Append writes the record as a new row and returns it with the
	// assigned row index. Returns *domain.DuplicateRowError if the uid
	// already owns a row, in which case no duplicate remains remotely.
	Append(ctx context.Context, rec domain.Record) (domain.Row, error)

	// Update rewrites the row at rowIndex in place and returns the
	// written row. The caller is expected to hold the uid's lease.
	Update(ctx context.Context, rowIndex int64, rec domain.Record) (domain.Row, error)

	// RowCount returns the number of data rows currently remote.
	// Cheap; used as the drift probe.
	RowCount(ctx context.Context) (int64, error)
}
