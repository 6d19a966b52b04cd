package driven

import (
	"context"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// LeaseManager serialises conflicting writes. Leases are keyed by uid
// so syncs for distinct invoices proceed in parallel; a whole-store
// lease exists for index rebuilds and conflicts with every key.
//
// A lease that is not renewed before expiry counts as abandoned and may
// be forcibly acquired by another caller. Expiry is the only crash
// recovery: a dead holder blocks writers for at most one lease
// interval.
type LeaseManager interface {
	// Acquire grants a lease on key for ttl. When the key is held, the
	// call waits until the lease frees up or ctx expires; on ctx
	// expiry it returns domain.ErrLeaseHeld. It never waits past the
	// ctx deadline.
	Acquire(ctx context.Context, key string, ttl time.Duration) (domain.Lease, error)

	// AcquireAll grants the whole-store lease, blocking new per-key
	// grants. It is granted only once every outstanding lease has been
	// released or has expired, and waits under the same ctx rules as
	// Acquire.
	AcquireAll(ctx context.Context, ttl time.Duration) (domain.Lease, error)

	// Renew extends an unexpired lease by its original ttl and returns
	// the refreshed grant. Returns domain.ErrLeaseExpired if the lease
	// already lapsed, or domain.ErrNotLeaseOwner if the key has been
	// re-acquired by someone else since.
	Renew(lease domain.Lease) (domain.Lease, error)

	// Release frees the lease. Releasing a superseded lease (the key
	// has been re-acquired under a new token) returns
	// domain.ErrNotLeaseOwner and frees nothing; releasing one's own
	// already-lapsed lease is a harmless no-op.
	Release(lease domain.Lease) error
}
