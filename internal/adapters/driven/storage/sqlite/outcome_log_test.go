package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

func testEvent(id string, at time.Time, outcome domain.Outcome) domain.OutcomeEvent {
	return domain.OutcomeEvent{ID: id, At: at, Outcome: outcome}
}

func TestOutcomeLog_PublishAndRecent(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).OutcomeLog()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, log.Publish(ctx, testEvent("ev-1", base, domain.Created("INV-001", 2))))
	require.NoError(t, log.Publish(ctx, testEvent("ev-2", base.Add(time.Minute), domain.Updated("INV-001", 2))))
	require.NoError(t, log.Publish(ctx, testEvent("ev-3", base.Add(2*time.Minute),
		domain.Failed("INV-002", domain.Permanent("op", assert.AnError)))))

	events, err := log.Recent(ctx, 2)

	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first
	assert.Equal(t, "ev-3", events[0].ID)
	assert.Equal(t, domain.OutcomeFailed, events[0].Status)
	assert.Equal(t, domain.FailurePermanent, events[0].Reason)
	assert.Equal(t, "ev-2", events[1].ID)
	assert.Equal(t, int64(2), events[1].RowIndex)
}

func TestOutcomeLog_Recent_Empty(t *testing.T) {
	log := newTestStore(t).OutcomeLog()

	events, err := log.Recent(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOutcomeLog_Prune(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).OutcomeLog()

	old := time.Now().Add(-48 * time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, log.Publish(ctx,
			testEvent(fmt.Sprintf("old-%d", i), old, domain.Created("INV-OLD", 2))))
	}
	require.NoError(t, log.Publish(ctx, testEvent("fresh", time.Now(), domain.Created("INV-NEW", 3))))

	require.NoError(t, log.Prune(ctx, 24*time.Hour))

	events, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].ID)
}
