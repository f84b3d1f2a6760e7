package alloc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_FreshAllocator(t *testing.T) {
	a, _ := newTestAllocator(t, 10)
	st := a.Stats()

	assert.Equal(t, uint32(10), st.TotalPages)
	assert.Equal(t, uint32(10), st.FreePages)
	assert.Zero(t, st.UsedPages)
	assert.Equal(t, 1, st.FreeRuns)
	assert.Equal(t, uint32(10), st.LargestFree)
	assert.Equal(t, uint32(10), st.SmallestFree)
	assert.Zero(t, st.Fragmentation)
}

func TestStats_Fragmented(t *testing.T) {
	a, _, _ := newAllocatorWithFreeRuns(t, []uint32{5, 2, 8})
	st := a.Stats()

	assert.Equal(t, uint32(17), st.TotalPages)
	assert.Equal(t, uint32(15), st.FreePages)
	assert.Equal(t, uint32(2), st.UsedPages)
	assert.Equal(t, 2, st.LiveRecords)
	assert.Equal(t, 3, st.FreeRuns)
	assert.Equal(t, uint32(8), st.LargestFree)
	assert.Equal(t, uint32(2), st.SmallestFree)
	assert.InDelta(t, 1-8.0/15.0, st.Fragmentation, 1e-9)

	// 5 placeholder + 2 separator allocations, 3 placeholder releases.
	assert.Equal(t, uint64(5), st.AllocCalls)
	assert.Equal(t, uint64(3), st.ReleaseCalls)
}

func TestStats_FullHeap(t *testing.T) {
	a, _ := newTestAllocator(t, 2)
	_, err := a.Allocate(2 * testPage)
	require.NoError(t, err)

	st := a.Stats()
	assert.Zero(t, st.FreePages)
	assert.Zero(t, st.FreeRuns)
	assert.Zero(t, st.SmallestFree)
	assert.Zero(t, st.Fragmentation)
}

func TestRecordsAndRuns(t *testing.T) {
	a, _ := newTestAllocator(t, 8)
	first, err := a.Allocate(2 * testPage)
	require.NoError(t, err)
	second, err := a.Allocate(testPage)
	require.NoError(t, err)

	assert.Equal(t, []Record{
		{Base: first, Pages: 2},
		{Base: second, Pages: 1},
	}, a.Records())

	assert.Equal(t, []Run{
		{Slot: 0, Pages: 2, Base: testStart},
		{Slot: 2, Pages: 1, Base: testStart + 2*testPage},
		{Slot: 3, Pages: 5, Base: testStart + 3*testPage, Free: true},
	}, a.Runs(), "adjacent allocations stay separate runs")
}

func TestLookup(t *testing.T) {
	a, _ := newTestAllocator(t, 8)
	_, err := a.Allocate(testPage)
	require.NoError(t, err)
	base, err := a.Allocate(3 * testPage)
	require.NoError(t, err)

	for _, addr := range []Addr{base, base + 1, base + testPage, base + 3*testPage - 1} {
		got, ok := a.Lookup(addr)
		require.True(t, ok, "0x%X", addr)
		assert.Equal(t, Record{Base: base, Pages: 3}, got)
	}

	_, ok := a.Lookup(base + 3*testPage)
	assert.False(t, ok, "first page after the allocation is free")
	_, ok = a.Lookup(testStart - 1)
	assert.False(t, ok)
	_, ok = a.Lookup(testStart + 8*testPage)
	assert.False(t, ok)
}

func TestPrintStats(t *testing.T) {
	a, _ := newTestAllocator(t, 4)
	_, err := a.Allocate(testPage)
	require.NoError(t, err)

	var out bytes.Buffer
	a.PrintStats(&out)
	assert.Contains(t, out.String(), "1 used / 3 free / 4 total")
	assert.Contains(t, out.String(), "Live records:   1")
}
