package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRecord indicates a record that cannot be synchronised.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrMissingUID indicates a record with no business key. Records
	// without a UID are never written; there would be nothing to
	// deduplicate them by.
	ErrMissingUID = errors.New("record has no uid")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Lease errors.

	// ErrLeaseHeld indicates the lease is held by another owner and
	// did not free up within the caller's wait budget.
	ErrLeaseHeld = errors.New("lease held by another owner")

	// ErrNotLeaseOwner indicates a renew or release with a token that
	// no longer matches the current grant.
	ErrNotLeaseOwner = errors.New("not the current lease owner")

	// ErrLeaseExpired indicates a renew attempted after the lease
	// already lapsed.
	ErrLeaseExpired = errors.New("lease expired")

	// Engine errors.

	// ErrRetriesExhausted indicates transient failures persisted past
	// the retry budget.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrIndexNotReady indicates the uniqueness index has not been
	// built (or was invalidated) and no rebuild has completed since.
	ErrIndexNotReady = errors.New("uniqueness index not built")

	// ErrNoCredentials indicates the credentials file is missing or
	// unreadable. Treated as permanent; retrying cannot conjure keys.
	ErrNoCredentials = errors.New("credentials unavailable")

	// Ingestion errors.

	// ErrUnknownVendor indicates a vendor code absent from the known
	// entities file while strict vendor checking is on.
	ErrUnknownVendor = errors.New("unknown vendor code")

	// ErrUnsupportedFormat indicates a record file in a format the
	// ingester cannot parse.
	ErrUnsupportedFormat = errors.New("unsupported record file format")
)
