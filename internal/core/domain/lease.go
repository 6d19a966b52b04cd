package domain

import "time"

// Lease is a time-bounded lock over a single UID's row, or over the
// whole store for index rebuilds. Expiry rather than explicit release
// is the safety net: a holder that crashes blocks other writers for at
// most one lease interval.
type Lease struct {
	// Key names what the lease guards: a record UID, or the manager's
	// whole-store key for rebuild operations.
	Key string

	// Token uniquely identifies this grant. Renew and Release require
	// the token to match, so a forcibly re-acquired lease cannot be
	// released by its previous holder.
	Token string

	// Owner identifies the holding process or component.
	Owner string

	// ExpiresAt is when the lease lapses unless renewed. After this
	// instant the lease counts as abandoned and may be acquired by
	// another caller.
	ExpiresAt time.Time
}

// Expired reports whether the lease has lapsed as of now.
func (l Lease) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// Remaining returns how long the lease is still valid, or zero if it
// has already lapsed.
func (l Lease) Remaining(now time.Time) time.Duration {
	if l.Expired(now) {
		return 0
	}
	return l.ExpiresAt.Sub(now)
}
