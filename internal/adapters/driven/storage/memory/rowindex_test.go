package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

func testRow(uid string, index int64) domain.Row {
	return domain.Row{
		Index:  index,
		UID:    uid,
		Values: []string{uid, "2024-03-01", "17", "addr", "desc", "10.00", "ACM"},
	}
}

func TestRowIndex_Lookup_Miss(t *testing.T) {
	idx := NewRowIndex()

	_, ok := idx.Lookup("INV-001")

	assert.False(t, ok)
}

func TestRowIndex_RecordAndLookup(t *testing.T) {
	idx := NewRowIndex()
	row := testRow("INV-001", 2)

	idx.Record(row)

	got, ok := idx.Lookup("INV-001")
	require.True(t, ok)
	assert.Equal(t, row, got)
}

func TestRowIndex_Record_ReplacesExisting(t *testing.T) {
	idx := NewRowIndex()
	idx.Record(testRow("INV-001", 2))

	updated := testRow("INV-001", 2)
	updated.Values[5] = "99.00"
	idx.Record(updated)

	got, ok := idx.Lookup("INV-001")
	require.True(t, ok)
	assert.Equal(t, "99.00", got.Values[5])
	assert.Equal(t, 1, idx.Len())
}

func TestRowIndex_Forget(t *testing.T) {
	idx := NewRowIndex()
	idx.Record(testRow("INV-001", 2))

	idx.Forget("INV-001")

	_, ok := idx.Lookup("INV-001")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestRowIndex_ReplaceAll_MarksReady(t *testing.T) {
	idx := NewRowIndex()
	require.False(t, idx.Ready())

	idx.ReplaceAll([]domain.Row{testRow("INV-001", 2), testRow("INV-002", 3)})

	assert.True(t, idx.Ready())
	assert.Equal(t, 2, idx.Len())
}

func TestRowIndex_ReplaceAll_LaterDuplicateWins(t *testing.T) {
	idx := NewRowIndex()

	first := testRow("INV-001", 2)
	second := testRow("INV-001", 7)
	idx.ReplaceAll([]domain.Row{first, second})

	got, ok := idx.Lookup("INV-001")
	require.True(t, ok)
	assert.Equal(t, int64(7), got.Index)
	assert.Equal(t, 1, idx.Len())
}

func TestRowIndex_Invalidate_EmptiesAndMarksNotReady(t *testing.T) {
	idx := NewRowIndex()
	idx.ReplaceAll([]domain.Row{testRow("INV-001", 2)})

	idx.Invalidate()

	assert.False(t, idx.Ready())
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Lookup("INV-001")
	assert.False(t, ok)
}

func TestRowIndex_Lookup_ReturnsCopy(t *testing.T) {
	idx := NewRowIndex()
	idx.Record(testRow("INV-001", 2))

	got, ok := idx.Lookup("INV-001")
	require.True(t, ok)
	got.Values[5] = "tampered"

	fresh, _ := idx.Lookup("INV-001")
	assert.Equal(t, "10.00", fresh.Values[5])
}

func TestRowIndex_Rows_ReturnsCopies(t *testing.T) {
	idx := NewRowIndex()
	idx.ReplaceAll([]domain.Row{testRow("INV-001", 2)})

	rows := idx.Rows()
	require.Len(t, rows, 1)
	rows[0].Values[0] = "tampered"

	got, _ := idx.Lookup("INV-001")
	assert.Equal(t, "INV-001", got.Values[0])
}

func TestRowIndex_ConcurrentAccess(t *testing.T) {
	idx := NewRowIndex()
	var wg sync.WaitGroup

	for g := 0; g < 50; g++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			uid := fmt.Sprintf("INV-%03d", n)
			idx.Record(testRow(uid, int64(n+2)))
			idx.Lookup(uid)
			idx.Len()
			idx.Rows()
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 50, idx.Len())
}
