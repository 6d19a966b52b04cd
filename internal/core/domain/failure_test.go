package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_Classification(t *testing.T) {
	cause := errors.New("socket closed")

	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil error", nil, ""},
		{"transient wrapper", Transient("read rows", cause), FailureTransient},
		{"permanent wrapper", Permanent("auth", cause), FailurePermanent},
		{"contended wrapper", Contended("acquire lease", cause), FailureContended},
		{"exhausted wrapper", Exhausted("append row", cause), FailureRetriesExhausted},
		{"wrapped transient", fmt.Errorf("sync INV-001: %w", Transient("append", cause)), FailureTransient},
		{"context canceled", context.Canceled, FailurePermanent},
		{"context deadline", context.DeadlineExceeded, FailurePermanent},
		{"lease held sentinel", ErrLeaseHeld, FailureContended},
		{"wrapped lease held", fmt.Errorf("locking: %w", ErrLeaseHeld), FailureContended},
		{"retries exhausted sentinel", ErrRetriesExhausted, FailureRetriesExhausted},
		{"unclassified error", cause, FailureTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestRetryable_OnlyTransient(t *testing.T) {
	cause := errors.New("boom")

	assert.True(t, Retryable(Transient("op", cause)))
	assert.True(t, Retryable(cause))
	assert.False(t, Retryable(Permanent("op", cause)))
	assert.False(t, Retryable(Contended("op", cause)))
	assert.False(t, Retryable(Exhausted("op", cause)))
	assert.False(t, Retryable(context.Canceled))
}

func TestSyncError_UnwrapsToCause(t *testing.T) {
	cause := errors.New("quota exceeded")

	err := Transient("append row", cause)

	assert.ErrorIs(t, err, cause)
	var se *SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "append row", se.Op)
}

func TestSyncError_ErrorMessage(t *testing.T) {
	err := Permanent("open spreadsheet", errors.New("404"))

	assert.Equal(t, "open spreadsheet: permanent: 404", err.Error())
}

func TestExhausted_KeepsSentinelAndCause(t *testing.T) {
	cause := errors.New("rate limited")

	err := Exhausted("update row", cause)

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, FailureRetriesExhausted, KindOf(err))
}

func TestDuplicateRowError_Message(t *testing.T) {
	err := &DuplicateRowError{Row: Row{Index: 7, UID: "INV-001"}}

	assert.Contains(t, err.Error(), "INV-001")
	assert.Contains(t, err.Error(), "7")
}
