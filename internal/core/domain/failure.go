package domain

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why an operation failed. The retry controller
// keys its policy off this classification: Transient failures are
// retried with backoff, everything else surfaces immediately.
type FailureKind string

const (
	// FailureTransient covers network timeouts, 5xx responses and
	// quota errors. Retried with exponential backoff.
	FailureTransient FailureKind = "transient"

	// FailurePermanent covers auth rejection, malformed requests and
	// missing resources. Never retried.
	FailurePermanent FailureKind = "permanent"

	// FailureContended means a lease could not be acquired within the
	// caller's timeout. The caller decides whether to re-attempt.
	FailureContended FailureKind = "contended"

	// FailureRetriesExhausted means transient failures persisted past
	// the retry budget. Terminal, but distinguishable from permanent
	// for diagnostics.
	FailureRetriesExhausted FailureKind = "retries_exhausted"
)

// SyncError attaches a FailureKind and the failing operation to an
// underlying cause. Adapters wrap every outgoing error in one so the
// retry controller and the orchestrator never have to guess.
type SyncError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *SyncError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable failure of op.
func Transient(op string, err error) error {
	return &SyncError{Kind: FailureTransient, Op: op, Err: err}
}

// Permanent wraps err as a terminal, never-retried failure of op.
func Permanent(op string, err error) error {
	return &SyncError{Kind: FailurePermanent, Op: op, Err: err}
}

// Contended wraps err as a lease-contention failure of op.
func Contended(op string, err error) error {
	return &SyncError{Kind: FailureContended, Op: op, Err: err}
}

// Exhausted marks op as having used up its retry budget, keeping the
// last transient cause in the chain. errors.Is(err, ErrRetriesExhausted)
// holds for the result.
func Exhausted(op string, err error) error {
	return &SyncError{
		Kind: FailureRetriesExhausted,
		Op:   op,
		Err:  fmt.Errorf("%w: %w", ErrRetriesExhausted, err),
	}
}

// KindOf classifies err. Wrapped SyncErrors report their own kind.
// Context cancellation is permanent (the caller gave up; retrying
// cannot help). Lease contention maps to FailureContended. Anything
// unclassified counts as transient, so unknown failures are retried
// up to the budget rather than dropped on the first hiccup.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailurePermanent
	}
	if errors.Is(err, ErrLeaseHeld) {
		return FailureContended
	}
	if errors.Is(err, ErrRetriesExhausted) {
		return FailureRetriesExhausted
	}
	return FailureTransient
}

// Retryable reports whether err should go back through the retry loop.
func Retryable(err error) bool {
	return KindOf(err) == FailureTransient
}

// DuplicateRowError reports that an append was refused (or undone)
// because the UID already owns a row the local index did not know
// about. Row is the surviving remote row; the caller should update it
// instead of creating a duplicate.
type DuplicateRowError struct {
	Row Row
}

func (e *DuplicateRowError) Error() string {
	return fmt.Sprintf("uid %q already present at row %d", e.Row.UID, e.Row.Index)
}
