package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

func testEvent(id string) domain.OutcomeEvent {
	return domain.OutcomeEvent{
		ID:      id,
		At:      time.Now(),
		Outcome: domain.Created("INV-"+id, 2),
	}
}

func TestOutcomeSink_PublishAndEvents(t *testing.T) {
	sink := NewOutcomeSink(0)

	require.NoError(t, sink.Publish(context.Background(), testEvent("a")))
	require.NoError(t, sink.Publish(context.Background(), testEvent("b")))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
}

func TestOutcomeSink_LimitEvictsOldest(t *testing.T) {
	sink := NewOutcomeSink(2)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, sink.Publish(context.Background(), testEvent(id)))
	}

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "c", events[1].ID)
}

func TestOutcomeSink_Reset(t *testing.T) {
	sink := NewOutcomeSink(0)
	require.NoError(t, sink.Publish(context.Background(), testEvent("a")))

	sink.Reset()

	assert.Empty(t, sink.Events())
}

func TestOutcomeSink_ConcurrentPublish(t *testing.T) {
	sink := NewOutcomeSink(0)
	var wg sync.WaitGroup

	for g := 0; g < 50; g++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = sink.Publish(context.Background(), testEvent(fmt.Sprintf("%d", n)))
		}(g)
	}
	wg.Wait()

	assert.Len(t, sink.Events(), 50)
}
