package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/config/file"
	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driving"
)

// stubSyncer answers Sync calls with canned outcomes.
type stubSyncer struct {
	mu       sync.Mutex
	synced   []domain.Record
	stats    driving.EngineStats
	rebuilds int
	failUID  string // records with this uid fail permanently
}

func (s *stubSyncer) Sync(_ context.Context, rec domain.Record) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.UID == s.failUID {
		err := domain.Permanent("stub", domain.ErrInvalidRecord)
		return domain.Failed(rec.UID, err), err
	}
	s.synced = append(s.synced, rec)
	return domain.Created(rec.UID, int64(len(s.synced)+1)), nil
}

func (s *stubSyncer) SyncBatch(ctx context.Context, recs []domain.Record) ([]domain.Outcome, error) {
	var outcomes []domain.Outcome
	var firstErr error
	for _, rec := range recs {
		outcome, err := s.Sync(ctx, rec)
		outcomes = append(outcomes, outcome)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return outcomes, firstErr
}

func (s *stubSyncer) RebuildIndex(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuilds++
	return nil
}

func (s *stubSyncer) EnsureIndex(context.Context) error { return nil }

func (s *stubSyncer) Stats(context.Context) (driving.EngineStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

var _ driving.Syncer = (*stubSyncer)(nil)

// stubRowStore serves a fixed set of rows for export tests.
type stubRowStore struct {
	rows []domain.Row
}

func (s *stubRowStore) ReadAll(context.Context) ([]domain.Row, error) { return s.rows, nil }
func (s *stubRowStore) Append(context.Context, domain.Record) (domain.Row, error) {
	return domain.Row{}, nil
}
func (s *stubRowStore) Update(context.Context, int64, domain.Record) (domain.Row, error) {
	return domain.Row{}, nil
}
func (s *stubRowStore) RowCount(context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

var _ driven.RowStore = (*stubRowStore)(nil)

// wireStubs installs test doubles and restores the previous wiring
// when the test finishes.
func wireStubs(t *testing.T, syncer driving.Syncer, store driven.RowStore) {
	t.Helper()
	prevSync, prevStore := syncService, rowStore
	prevConfig, prevVendors, prevSettings := configStore, vendorRegistry, appSettings
	prevHistory := outcomeLog

	settings := file.Defaults()
	settings.SyncTimeout = 10 * time.Second
	SetServices(syncer, store, newTestConfigStore(t), nil, settings)
	SetOutcomeHistory(nil)

	t.Cleanup(func() {
		syncService, rowStore = prevSync, prevStore
		configStore, vendorRegistry, appSettings = prevConfig, prevVendors, prevSettings
		outcomeLog = prevHistory
	})
}

func newTestConfigStore(t *testing.T) *file.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// executeCommand runs the root command with args and returns combined
// output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}
