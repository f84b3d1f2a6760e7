package alloc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pageheap/heap/backing"
)

const (
	testStart = 0x80000000
	testPage  = 4096
)

// ============================================================================
// Test Helpers
// ============================================================================

// testConfig returns a config with the given number of 4KB slots.
func testConfig(pages uint32) Config {
	return Config{
		HeapStart: testStart,
		HeapMax:   testStart + pages*testPage,
		PageSize:  testPage,
	}
}

// newTestAllocator creates an allocator over pages slots backed by a Recorder.
func newTestAllocator(t testing.TB, pages uint32) (*Allocator, *backing.Recorder) {
	t.Helper()

	cfg := testConfig(pages)
	rec := backing.NewRecorder(cfg.PageSize)
	a, err := New(cfg, rec)
	require.NoError(t, err)
	return a, rec
}

// newAllocatorWithFreeRuns builds a table whose free runs have the given
// lengths, each separated by a one-page allocation. It returns the base
// address of every free run.
//
// Example: runs [5, 2, 8] produce ".....H..H........" (17 slots).
func newAllocatorWithFreeRuns(t testing.TB, runs []uint32) (*Allocator, *backing.Recorder, []Addr) {
	t.Helper()

	var total uint32
	for _, r := range runs {
		total += r
	}
	total += uint32(len(runs) - 1)

	a, rec := newTestAllocator(t, total)

	// Fill the table in order, then release the placeholders for the runs.
	placeholders := make([]Addr, 0, len(runs))
	for i, r := range runs {
		addr, err := a.Allocate(r * testPage)
		require.NoError(t, err)
		placeholders = append(placeholders, addr)
		if i < len(runs)-1 {
			_, err = a.Allocate(testPage)
			require.NoError(t, err)
		}
	}
	for _, addr := range placeholders {
		require.NoError(t, a.Release(addr))
	}
	return a, rec, placeholders
}

// slotString renders the slot table: 'H' head, 't' tail, '.' free.
func slotString(a *Allocator) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	for _, s := range a.slots {
		switch s.state {
		case slotHead:
			sb.WriteByte('H')
		case slotTail:
			sb.WriteByte('t')
		default:
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// slotOf converts an address to its slot index.
func slotOf(addr Addr) uint32 {
	return (addr - testStart) / testPage
}

// assertInvariants checks the slot table partition and that the backing
// store maps exactly the live records.
func assertInvariants(t testing.TB, a *Allocator, rec *backing.Recorder) {
	t.Helper()

	runs := a.Runs()
	var next, used uint32
	for i, r := range runs {
		assert.Equal(t, next, r.Slot, "run %d does not start where the previous ended", i)
		assert.NotZero(t, r.Pages, "run %d is empty", i)
		if r.Free && i > 0 {
			assert.False(t, runs[i-1].Free, "free runs %d and %d are not maximal", i-1, i)
		}
		if !r.Free {
			used += r.Pages
		}
		next = r.End()
	}
	assert.Equal(t, a.NumPages(), next, "runs do not cover the table")

	st := a.Stats()
	assert.Equal(t, used, st.UsedPages, "used page accounting drifted")

	records := a.Records()
	assert.Equal(t, st.LiveRecords, len(records))

	if rec == nil {
		return
	}
	mapped := rec.Mapped()
	require.Len(t, mapped, len(records), "store and allocator disagree on live allocations")
	for i, r := range records {
		assert.Equal(t, uint64(r.Base), mapped[i].Off, "record %d base", i)
		assert.Equal(t, r.Size(testPage), mapped[i].Len, "record %d size", i)
	}
}
