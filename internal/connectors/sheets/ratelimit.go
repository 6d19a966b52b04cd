package sheets

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies an API surface for rate limiting purposes.
// Reads and writes draw from separate per-user quotas, so each gets
// its own bucket.
type ServiceType string

const (
	// ServiceRead covers values.get and spreadsheet reads.
	ServiceRead ServiceType = "read"
	// ServiceWrite covers append, update and batchUpdate calls.
	ServiceWrite ServiceType = "write"
	// ServiceDrive covers Drive file lookups during resolution.
	ServiceDrive ServiceType = "drive"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults per service, well
// below the per-minute per-user quotas so steady-state syncing never
// trips them; the backoff controller absorbs anything that slips past.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceRead:  {RequestsPerSecond: 1.0, BurstSize: 5},
	ServiceWrite: {RequestsPerSecond: 1.0, BurstSize: 5},
	ServiceDrive: {RequestsPerSecond: 2.0, BurstSize: 5},
}

// RateLimiter shapes requests to the API's quota. It uses a token
// bucket plus a backoff window set whenever the API reports a rate
// limit, so a 429's Retry-After is honoured by every subsequent call.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service ServiceType
}

// NewRateLimiter creates a rate limiter for the specified service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 1.0, BurstSize: 5}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		service: service,
	}
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1.0
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any backoff window set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff window after a 429 response.
// retryAfterSeconds comes from the Retry-After header when present.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		// Default backoff: 30 seconds
		retryAfterSeconds = 30
	}
	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
