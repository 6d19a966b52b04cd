// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SnapshotStore: persisted copy of the uniqueness index for fast startup
//   - OutcomeLog: durable audit trail of sync outcomes (an OutcomeSink)
//
// Everything here is disposable local state; the remote store remains the
// source of truth and the engine rebuilds from it when the database is
// missing or stale.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.invoiceai/data/invoiceai.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
