package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// fastPolicy keeps test runtimes in the low milliseconds.
func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, Base: time.Millisecond, Max: 4 * time.Millisecond}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), fastPolicy(5), "append row", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoversFromTransientFailures(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), fastPolicy(5), "append row", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return domain.Transient("append row", errors.New("503"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_PermanentFailsImmediately(t *testing.T) {
	cause := errors.New("401 unauthorised")
	calls := 0

	err := Retry(context.Background(), fastPolicy(5), "append row", func(ctx context.Context) error {
		calls++
		return domain.Permanent("append row", cause)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.FailurePermanent, domain.KindOf(err))
}

func TestRetry_ContendedFailsImmediately(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), fastPolicy(5), "acquire lease", func(ctx context.Context) error {
		calls++
		return domain.Contended("acquire lease", domain.ErrLeaseHeld)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.FailureContended, domain.KindOf(err))
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	cause := errors.New("quota exceeded")
	calls := 0

	err := Retry(context.Background(), fastPolicy(4), "update row", func(ctx context.Context) error {
		calls++
		return domain.Transient("update row", cause)
	})

	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.FailureRetriesExhausted, domain.KindOf(err))
}

func TestRetry_UnclassifiedErrorsAreRetried(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), fastPolicy(3), "read rows", func(ctx context.Context) error {
		calls++
		return errors.New("connection reset")
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
}

func TestRetry_ElapsedTimeBounded(t *testing.T) {
	start := time.Now()

	err := Retry(context.Background(), fastPolicy(5), "read rows", func(ctx context.Context) error {
		return domain.Transient("read rows", errors.New("timeout"))
	})

	// Worst case: 4 sleeps of at most Max*1.5 = 6ms each.
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
}

func TestRetry_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := Retry(ctx, Policy{MaxAttempts: 5, Base: time.Minute, Max: time.Minute}, "read rows", func(ctx context.Context) error {
		calls++
		return domain.Transient("read rows", errors.New("timeout"))
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.FailurePermanent, domain.KindOf(err))
}

func TestRetry_ZeroPolicyUsesDefaults(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), Policy{}, "append row", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Delay_WithinJitterBounds(t *testing.T) {
	p := Policy{MaxAttempts: 5, Base: 100 * time.Millisecond, Max: time.Second}

	tests := []struct {
		attempt int
		raw     time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}

	for _, tt := range tests {
		for i := 0; i < 50; i++ {
			d := p.Delay(tt.attempt)
			assert.GreaterOrEqual(t, d, tt.raw, "attempt %d", tt.attempt)
			assert.LessOrEqual(t, d, tt.raw+tt.raw/2, "attempt %d", tt.attempt)
		}
	}
}

func TestPolicy_Delay_Jitters(t *testing.T) {
	p := Policy{MaxAttempts: 5, Base: time.Second, Max: 30 * time.Second}

	seen := map[time.Duration]bool{}
	for i := 0; i < 50; i++ {
		seen[p.Delay(3)] = true
	}

	// 8s raw delay with up to 4s of jitter: 50 draws all landing on
	// the same value would mean the jitter term is broken.
	assert.Greater(t, len(seen), 1)
}
