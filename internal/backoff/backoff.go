// Package backoff implements the bounded retry policy wrapped around
// every remote store operation. Transient failures are retried with
// exponential backoff and jitter; permanent and contended failures
// surface immediately; a used-up budget surfaces as retries exhausted.
package backoff

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

// Default policy values. Five attempts doubling from one second keeps
// a worst-case call under the remote API's per-minute quota window.
const (
	DefaultMaxAttempts = 5
	DefaultBase        = time.Second
	DefaultMax         = 30 * time.Second
)

// Policy describes one retry budget. The zero value retries with the
// defaults above.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the
	// first. The budget, not a retry count.
	MaxAttempts int

	// Base is the delay before the second attempt. The delay before
	// attempt n+1 is Base * 2^n, capped at Max.
	Base time.Duration

	// Max caps the exponential delay. Jitter is added after capping,
	// so the slept interval may exceed Max by up to half.
	Max time.Duration
}

func (p Policy) normalised() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Base <= 0 {
		p.Base = DefaultBase
	}
	if p.Max <= 0 {
		p.Max = DefaultMax
	}
	return p
}

// Delay returns the backoff delay after failed attempt number attempt
// (0-based), jitter included: base * 2^attempt capped at Max, plus a
// random term in [0, delay/2]. Jitter keeps concurrent writers that
// tripped the same quota from retrying in lockstep.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalised()
	delay := p.Base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.Max {
			delay = p.Max
			break
		}
	}
	if delay > p.Max {
		delay = p.Max
	}
	return delay + rand.N(delay/2+1)
}

// Retry runs fn under the policy. It returns nil on the first success,
// the error itself when fn fails non-transiently, ctx's error when the
// caller gives up mid-wait, and a retries-exhausted failure wrapping
// the last transient cause once the budget is spent. op names the
// operation for logs and the exhausted error.
func Retry(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	p = p.normalised()

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !domain.Retryable(err) {
			return err
		}
		lastErr = err
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.Delay(attempt)
		logger.Warn("%s failed (attempt %d/%d), backing off %s: %v",
			op, attempt+1, p.MaxAttempts, delay.Round(time.Millisecond), err)
		if waitErr := sleepContext(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	return domain.Exhausted(op, lastErr)
}

// sleepContext waits for delay or until ctx is done, whichever comes
// first, returning ctx's error in the latter case.
func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
