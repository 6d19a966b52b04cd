package memory

import (
	"context"
	"sync"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Ensure OutcomeSink implements the interface.
var _ driven.OutcomeSink = (*OutcomeSink)(nil)

// OutcomeSink buffers outcome events in memory. Used in tests and as
// the recent-events buffer for status output in short-lived processes.
type OutcomeSink struct {
	mu     sync.RWMutex
	events []domain.OutcomeEvent
	limit  int
}

// NewOutcomeSink creates a sink keeping at most limit events, oldest
// evicted first. A non-positive limit keeps everything.
func NewOutcomeSink(limit int) *OutcomeSink {
	return &OutcomeSink{limit: limit}
}

// Publish records one outcome event.
func (s *OutcomeSink) Publish(_ context.Context, event domain.OutcomeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.limit > 0 && len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// Events returns a copy of the buffered events, oldest first.
func (s *OutcomeSink) Events() []domain.OutcomeEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OutcomeEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Reset drops all buffered events.
func (s *OutcomeSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
