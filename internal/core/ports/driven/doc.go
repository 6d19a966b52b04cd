// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - RowStore: Typed operations against the remote tabular store
//   - RowIndex: In-memory uid → row cache answering uniqueness lookups
//   - LeaseManager: Time-bounded mutual exclusion between writers
//   - CredentialsProvider: Tokens for the remote store's API
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - SnapshotStore: Persisted copy of the index for fast startup.
//     Disposable; the engine rebuilds from the remote store whenever
//     the snapshot is missing, stale or corrupt.
//   - OutcomeSink: Receives outcome events (feedback stream, audit
//     log). Sinks observe; they never influence a sync.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
