package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// ReplaceAll atomically replaces the snapshot with rows.
func (s *snapshotStore) ReplaceAll(ctx context.Context, rows []domain.Row) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_rows"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	for _, row := range rows {
		if err := upsertRow(ctx, tx, row); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, written_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET written_at = excluded.written_at
	`, time.Now().UTC()); err != nil {
		return fmt.Errorf("recording snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Upsert stores or updates a single row in the snapshot.
func (s *snapshotStore) Upsert(ctx context.Context, row domain.Row) error {
	return upsertRow(ctx, s.store.db, row)
}

// Delete removes the snapshot entry for uid, if present.
func (s *snapshotStore) Delete(ctx context.Context, uid string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM snapshot_rows WHERE uid = ?", uid); err != nil {
		return fmt.Errorf("deleting snapshot row: %w", err)
	}
	return nil
}

// LoadAll returns the snapshot rows and when the snapshot was last
// written. Returns domain.ErrNotFound if no snapshot exists.
func (s *snapshotStore) LoadAll(ctx context.Context) ([]domain.Row, time.Time, error) {
	var writtenAt time.Time
	err := s.store.db.QueryRowContext(ctx,
		"SELECT written_at FROM snapshot_meta WHERE id = 1").Scan(&writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading snapshot time: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT uid, row_index, values_json, synced_at
		FROM snapshot_rows ORDER BY row_index
	`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("querying snapshot rows: %w", err)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var (
			row        domain.Row
			valuesJSON string
			syncedAt   sql.NullTime
		)
		if err := rows.Scan(&row.UID, &row.Index, &valuesJSON, &syncedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if err := json.Unmarshal([]byte(valuesJSON), &row.Values); err != nil {
			return nil, time.Time{}, fmt.Errorf("unmarshalling values for %s: %w", row.UID, err)
		}
		if syncedAt.Valid {
			row.SyncedAt = syncedAt.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	return out, writtenAt, nil
}

// Clear drops the snapshot entirely.
func (s *snapshotStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM snapshot_rows"); err != nil {
		return fmt.Errorf("clearing snapshot rows: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM snapshot_meta"); err != nil {
		return fmt.Errorf("clearing snapshot meta: %w", err)
	}
	return nil
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRow(ctx context.Context, db execer, row domain.Row) error {
	valuesJSON, err := json.Marshal(row.Values)
	if err != nil {
		return fmt.Errorf("marshalling values for %s: %w", row.UID, err)
	}

	var syncedAt any
	if !row.SyncedAt.IsZero() {
		syncedAt = row.SyncedAt.UTC()
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO snapshot_rows (uid, row_index, values_json, synced_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			row_index = excluded.row_index,
			values_json = excluded.values_json,
			synced_at = excluded.synced_at
	`, row.UID, row.Index, string(valuesJSON), syncedAt); err != nil {
		return fmt.Errorf("upserting snapshot row %s: %w", row.UID, err)
	}
	return nil
}
