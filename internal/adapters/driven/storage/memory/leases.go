package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Ensure LeaseManager implements the interface.
var _ driven.LeaseManager = (*LeaseManager)(nil)

// allKey is the reserved whole-store lease key. It conflicts with
// every per-uid key: while it is held nothing else is granted, and it
// is granted only when nothing else is held.
const allKey = "*"

// DefaultTTL is used when a caller passes a non-positive lease
// duration.
const DefaultTTL = 30 * time.Second

// pollInterval is the granularity at which blocked acquirers re-check
// the lease table.
const pollInterval = 5 * time.Millisecond

type grant struct {
	lease domain.Lease
	ttl   time.Duration
}

// LeaseManager is an in-process lease table keyed by uid. Expiry makes
// abandoned leases recoverable: a grant that is neither renewed nor
// released becomes acquirable by anyone once its deadline passes.
type LeaseManager struct {
	mu     sync.Mutex
	owner  string
	grants map[string]grant
}

// NewLeaseManager creates a lease manager with a fresh owner identity.
func NewLeaseManager() *LeaseManager {
	return &LeaseManager{
		owner:  uuid.NewString(),
		grants: make(map[string]grant),
	}
}

// Owner returns the identity stamped on leases granted by this
// manager.
func (m *LeaseManager) Owner() string {
	return m.owner
}

// Acquire grants a lease on key for ttl, waiting until the key frees
// up or ctx expires. On ctx expiry it returns domain.ErrLeaseHeld.
func (m *LeaseManager) Acquire(ctx context.Context, key string, ttl time.Duration) (domain.Lease, error) {
	if key == "" || key == allKey {
		return domain.Lease{}, fmt.Errorf("%w: lease key %q", domain.ErrInvalidInput, key)
	}
	return m.waitAcquire(ctx, key, ttl)
}

// AcquireAll grants the whole-store lease, used for index rebuilds.
func (m *LeaseManager) AcquireAll(ctx context.Context, ttl time.Duration) (domain.Lease, error) {
	return m.waitAcquire(ctx, allKey, ttl)
}

func (m *LeaseManager) waitAcquire(ctx context.Context, key string, ttl time.Duration) (domain.Lease, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if lease, ok := m.tryAcquire(key, ttl); ok {
			return lease, nil
		}
		select {
		case <-ctx.Done():
			return domain.Lease{}, fmt.Errorf("lease %q: %w", key, domain.ErrLeaseHeld)
		case <-ticker.C:
		}
	}
}

// tryAcquire attempts a single non-blocking grant.
func (m *LeaseManager) tryAcquire(key string, ttl time.Duration) (domain.Lease, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.dropExpired(now)

	if _, held := m.grants[allKey]; held && key != allKey {
		return domain.Lease{}, false
	}
	if key == allKey && len(m.grants) > 0 {
		return domain.Lease{}, false
	}
	if _, held := m.grants[key]; held {
		return domain.Lease{}, false
	}

	lease := domain.Lease{
		Key:       key,
		Token:     uuid.NewString(),
		Owner:     m.owner,
		ExpiresAt: now.Add(ttl),
	}
	m.grants[key] = grant{lease: lease, ttl: ttl}
	return lease, true
}

// dropExpired lazily removes lapsed grants. Callers hold m.mu.
func (m *LeaseManager) dropExpired(now time.Time) {
	for key, g := range m.grants {
		if g.lease.Expired(now) {
			delete(m.grants, key)
		}
	}
}

// Renew extends an unexpired lease by its original ttl.
func (m *LeaseManager) Renew(lease domain.Lease) (domain.Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cur, ok := m.grants[lease.Key]
	if !ok || cur.lease.Token != lease.Token {
		return domain.Lease{}, fmt.Errorf("lease %q: %w", lease.Key, domain.ErrNotLeaseOwner)
	}
	if cur.lease.Expired(now) {
		delete(m.grants, lease.Key)
		return domain.Lease{}, fmt.Errorf("lease %q: %w", lease.Key, domain.ErrLeaseExpired)
	}

	cur.lease.ExpiresAt = now.Add(cur.ttl)
	m.grants[lease.Key] = cur
	return cur.lease, nil
}

// Release frees the lease. Releasing a superseded lease (the key was
// re-acquired under a new token) returns domain.ErrNotLeaseOwner and
// frees nothing; releasing one's own already-expired lease is a no-op.
func (m *LeaseManager) Release(lease domain.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.grants[lease.Key]
	if !ok {
		return nil
	}
	if cur.lease.Token != lease.Token {
		return fmt.Errorf("lease %q: %w", lease.Key, domain.ErrNotLeaseOwner)
	}
	delete(m.grants, lease.Key)
	return nil
}

// Held reports whether key currently has an unexpired grant. Intended
// for status output.
func (m *LeaseManager) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[key]
	return ok && !g.lease.Expired(time.Now())
}
