package alloc

import (
	"fmt"
	"io"
	"os"
)

// Stats is a point-in-time summary of the allocator.
type Stats struct {
	TotalPages   uint32
	UsedPages    uint32
	FreePages    uint32
	LiveRecords  int
	FreeRuns     int    // number of maximal free runs
	LargestFree  uint32 // longest free run, in pages
	SmallestFree uint32 // shortest free run, in pages (0 if none)

	// Fragmentation is 1 - LargestFree/FreePages: 0 when all free pages
	// form one run, approaching 1 as free space splinters.
	Fragmentation float64

	AllocCalls    uint64
	AllocFailures uint64
	ReleaseCalls  uint64
	BadReleases   uint64
	StoreFailures uint64
}

// Stats computes current statistics. O(N) in the number of slots.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Stats{
		TotalPages:    uint32(len(a.slots)),
		UsedPages:     a.usedPages,
		FreePages:     uint32(len(a.slots)) - a.usedPages,
		LiveRecords:   a.live,
		AllocCalls:    a.stats.AllocCalls,
		AllocFailures: a.stats.AllocFailures,
		ReleaseCalls:  a.stats.ReleaseCalls,
		BadReleases:   a.stats.BadReleases,
		StoreFailures: a.stats.StoreFailures,
	}

	for _, r := range a.runsLocked() {
		if !r.Free {
			continue
		}
		st.FreeRuns++
		if r.Pages > st.LargestFree {
			st.LargestFree = r.Pages
		}
		if st.SmallestFree == 0 || r.Pages < st.SmallestFree {
			st.SmallestFree = r.Pages
		}
	}
	if st.FreePages > 0 {
		st.Fragmentation = 1 - float64(st.LargestFree)/float64(st.FreePages)
	}
	return st
}

// Records returns the live allocations ordered by base address.
func (a *Allocator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Record, 0, a.live)
	for i := uint32(0); i < uint32(len(a.slots)); {
		s := a.slots[i]
		if s.state == slotHead && s.pages > 0 {
			out = append(out, Record{Base: a.addrOf(i), Pages: s.pages})
			i += s.pages
			continue
		}
		i++
	}
	return out
}

// Runs returns the whole slot table as maximal runs, in address order.
// Each allocation is its own run, even when allocations are adjacent.
func (a *Allocator) Runs() []Run {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runsLocked()
}

func (a *Allocator) runsLocked() []Run {
	var out []Run
	n := uint32(len(a.slots))
	for i := uint32(0); i < n; {
		s := a.slots[i]
		switch {
		case s.state == slotHead && s.pages > 0:
			out = append(out, Run{Slot: i, Pages: s.pages, Base: a.addrOf(i)})
			i += s.pages
		case s.state == slotFree:
			j := i
			for j < n && a.slots[j].state == slotFree {
				j++
			}
			out = append(out, Run{Slot: i, Pages: j - i, Base: a.addrOf(i), Free: true})
			i = j
		default:
			// Orphaned tail slot; report it as a one-page allocation so
			// verification can flag it.
			out = append(out, Run{Slot: i, Pages: 1, Base: a.addrOf(i)})
			i++
		}
	}
	return out
}

// Lookup returns the allocation containing addr. Unlike Release, interior
// addresses are accepted.
func (a *Allocator) Lookup(addr Addr) (Record, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cfg.Contains(addr) {
		return Record{}, false
	}
	idx := (addr - a.cfg.HeapStart) / a.cfg.PageSize
	for {
		s := a.slots[idx]
		switch s.state {
		case slotHead:
			return Record{Base: a.addrOf(idx), Pages: s.pages}, true
		case slotFree:
			return Record{}, false
		}
		if idx == 0 {
			return Record{}, false
		}
		idx--
	}
}

// PrintStats writes a human-readable summary to w (stderr when nil).
func (a *Allocator) PrintStats(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	st := a.Stats()
	fmt.Fprintf(w, "=== Page Heap Statistics ===\n")
	fmt.Fprintf(w, "Range:          %s\n", a.cfg)
	fmt.Fprintf(w, "Pages:          %d used / %d free / %d total\n", st.UsedPages, st.FreePages, st.TotalPages)
	fmt.Fprintf(w, "Live records:   %d\n", st.LiveRecords)
	fmt.Fprintf(w, "Free runs:      %d (largest %d, smallest %d)\n", st.FreeRuns, st.LargestFree, st.SmallestFree)
	fmt.Fprintf(w, "Fragmentation:  %.2f%%\n", st.Fragmentation*100)
	fmt.Fprintf(w, "Allocate calls: %d (%d failed)\n", st.AllocCalls, st.AllocFailures)
	fmt.Fprintf(w, "Release calls:  %d (%d rejected)\n", st.ReleaseCalls, st.BadReleases)
	fmt.Fprintf(w, "Store failures: %d\n", st.StoreFailures)
}
