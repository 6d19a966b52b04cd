package driven

import (
	"context"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// OutcomeSink receives the outcome event stream. Consumers include the
// feedback file the training subsystem tails and the local audit log.
//
// Sinks are observers. The orchestrator publishes best-effort after
// the lease is resolved: a failing sink is logged and never fails, or
// retries, the sync that produced the event.
type OutcomeSink interface {
	// Publish delivers one outcome event.
	Publish(ctx context.Context, event domain.OutcomeEvent) error
}
