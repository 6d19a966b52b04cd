package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// OutcomeLog is the durable audit trail of sync outcomes. It doubles
// as an OutcomeSink, so the orchestrator publishes to it like any
// other observer.
type OutcomeLog struct {
	store *Store
}

var _ driven.OutcomeSink = (*OutcomeLog)(nil)

// Publish appends one outcome event to the log.
func (l *OutcomeLog) Publish(ctx context.Context, event domain.OutcomeEvent) error {
	if _, err := l.store.db.ExecContext(ctx, `
		INSERT INTO outcome_events
			(id, uid, status, row_index, reason, message, attempts, duration_ns, emitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.UID, string(event.Status), event.RowIndex, string(event.Reason),
		event.Message, event.Attempts, int64(event.Duration), event.At.UTC()); err != nil {
		return fmt.Errorf("inserting outcome event: %w", err)
	}
	return nil
}

// Recent returns the most recent events, newest first.
func (l *OutcomeLog) Recent(ctx context.Context, limit int) ([]domain.OutcomeEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.store.db.QueryContext(ctx, `
		SELECT id, uid, status, row_index, reason, message, attempts, duration_ns, emitted_at
		FROM outcome_events ORDER BY emitted_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying outcome events: %w", err)
	}
	defer rows.Close()

	var out []domain.OutcomeEvent
	for rows.Next() {
		event, err := scanOutcomeEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcome events: %w", err)
	}
	return out, nil
}

// Prune removes events older than keep, bounding the log's growth.
func (l *OutcomeLog) Prune(ctx context.Context, keep time.Duration) error {
	cutoff := time.Now().Add(-keep).UTC()
	if _, err := l.store.db.ExecContext(ctx,
		"DELETE FROM outcome_events WHERE emitted_at < ?", cutoff); err != nil {
		return fmt.Errorf("pruning outcome events: %w", err)
	}
	return nil
}

func scanOutcomeEvent(rows *sql.Rows) (domain.OutcomeEvent, error) {
	var (
		event      domain.OutcomeEvent
		status     string
		reason     string
		durationNS int64
	)
	if err := rows.Scan(&event.ID, &event.UID, &status, &event.RowIndex, &reason,
		&event.Message, &event.Attempts, &durationNS, &event.At); err != nil {
		return domain.OutcomeEvent{}, fmt.Errorf("scanning outcome event: %w", err)
	}
	event.Status = domain.OutcomeStatus(status)
	event.Reason = domain.FailureKind(reason)
	event.Duration = time.Duration(durationNS)
	return event, nil
}
