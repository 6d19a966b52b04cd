package domain

import "time"

// OutcomeStatus is the terminal state of one sync call.
type OutcomeStatus string

const (
	// OutcomeCreated means a new remote row was appended.
	OutcomeCreated OutcomeStatus = "created"

	// OutcomeUpdated means an existing remote row was rewritten.
	OutcomeUpdated OutcomeStatus = "updated"

	// OutcomeUnchanged means the remote row already matched the record
	// and no write was issued.
	OutcomeUnchanged OutcomeStatus = "unchanged"

	// OutcomeFailed means the sync terminated without a confirmed
	// write. Reason carries the failure classification.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the result of one Sync call. Created and Updated are only
// ever reported after the remote write has been confirmed.
type Outcome struct {
	// UID identifies the record the call concerned.
	UID string `json:"uid"`

	// Status is the terminal state.
	Status OutcomeStatus `json:"status"`

	// RowIndex is the remote row involved. Set for created, updated
	// and unchanged outcomes; zero on failure.
	RowIndex int64 `json:"row_index,omitempty"`

	// Reason classifies a failure. Empty unless Status is failed.
	Reason FailureKind `json:"reason,omitempty"`

	// Message is the failure description for diagnostics. Empty on
	// success.
	Message string `json:"message,omitempty"`

	// Attempts counts remote write attempts made, including the
	// successful one. Zero when the call never reached the store.
	Attempts int `json:"attempts,omitempty"`

	// Duration is how long the call took end to end.
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// Synced reports whether the call left the remote store in the
// requested state (including the no-op unchanged case).
func (o Outcome) Synced() bool {
	return o.Status != OutcomeFailed && o.Status != ""
}

// Created builds a successful append outcome.
func Created(uid string, rowIndex int64) Outcome {
	return Outcome{UID: uid, Status: OutcomeCreated, RowIndex: rowIndex}
}

// Updated builds a successful in-place update outcome.
func Updated(uid string, rowIndex int64) Outcome {
	return Outcome{UID: uid, Status: OutcomeUpdated, RowIndex: rowIndex}
}

// Unchanged builds a no-op outcome for a row that already matched.
func Unchanged(uid string, rowIndex int64) Outcome {
	return Outcome{UID: uid, Status: OutcomeUnchanged, RowIndex: rowIndex}
}

// Failed builds a failure outcome classified from err.
func Failed(uid string, err error) Outcome {
	o := Outcome{UID: uid, Status: OutcomeFailed, Reason: KindOf(err)}
	if err != nil {
		o.Message = err.Error()
	}
	return o
}

// OutcomeEvent is the unit published to outcome sinks: an Outcome
// stamped with an event identity and emission time. Sinks are
// observers only; publishing failures never fail the sync itself.
type OutcomeEvent struct {
	// ID is the engine-assigned event identity.
	ID string `json:"id"`

	// At is when the engine emitted the event.
	At time.Time `json:"timestamp"`

	Outcome
}
