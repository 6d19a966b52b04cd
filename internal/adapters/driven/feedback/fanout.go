package feedback

import (
	"context"
	"errors"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Ensure FanOut implements the interface.
var _ driven.OutcomeSink = (*FanOut)(nil)

// FanOut delivers each event to every sink. Delivery continues past
// individual failures; the joined error reports all of them.
type FanOut struct {
	sinks []driven.OutcomeSink
}

// NewFanOut creates a composite sink. Nil entries are dropped.
func NewFanOut(sinks ...driven.OutcomeSink) *FanOut {
	kept := make([]driven.OutcomeSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &FanOut{sinks: kept}
}

// Publish delivers the event to every sink.
func (f *FanOut) Publish(ctx context.Context, event domain.OutcomeEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of attached sinks.
func (f *FanOut) Len() int {
	return len(f.sinks)
}
