// Package services implements the driving port interfaces.
// SyncService orchestrates record upserts through the driven ports
// (row store, index, leases, snapshot, outcome sinks); DriftWatcher
// keeps the index honest between syncs.
package services
