// Package connectors holds clients for external APIs. Each connector
// wraps one remote service behind the engine's driven ports, keeping
// API quirks (quotas, error shapes, auth) out of the core.
package connectors
