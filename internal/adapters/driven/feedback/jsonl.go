// Package feedback publishes outcome events for the training
// subsystem to consume. The JSONL sink appends one JSON object per
// line to a feedback file an external process can tail; the engine
// never reads it back.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// Ensure JSONLSink implements the interface.
var _ driven.OutcomeSink = (*JSONLSink)(nil)

// JSONLSink appends outcome events to a JSON Lines file.
type JSONLSink struct {
	mu   sync.Mutex
	path string
}

// NewJSONLSink creates a sink writing to path. The parent directory is
// created on the first publish, not here, so constructing sinks for
// never-used paths stays free of side effects.
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path}
}

// Path returns the feedback file location.
func (s *JSONLSink) Path() string {
	return s.path
}

// Publish appends one event as a single JSON line.
func (s *JSONLSink) Publish(_ context.Context, event domain.OutcomeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling outcome event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating feedback directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening feedback file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending outcome event: %w", err)
	}
	return nil
}
