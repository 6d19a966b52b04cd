// Package domain defines the core business entities for InvoiceAI.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: An invoice record produced upstream, keyed by UID
//   - Row: The persisted counterpart of a Record in the remote store
//   - Lease: A time-bounded lock guarding writes to a single UID
//   - Outcome: The result of one synchronisation attempt
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
