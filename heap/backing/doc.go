// Package backing provides the Backing Store collaborators of the page heap.
//
// # Overview
//
// The allocator in heap/alloc only does bookkeeping: it decides which page
// run an allocation occupies. Making those pages usable is delegated to a
// Store through two primitives:
//
//   - MapPages(base, size): back size bytes at base and make them accessible
//   - UnmapPages(base, size): release the backing and make them inaccessible
//
// # Implementations
//
// Recorder: in-memory store for tests and dry runs
//
//   - Tracks every mapped unit and rejects overlapping maps or partial unmaps
//   - Records every call for later inspection
//   - FailNext injects a one-shot failure
//
// Region: real virtual memory (linux, darwin, freebsd)
//
//   - Reserves the managed range as one PROT_NONE anonymous mapping
//   - MapPages = mprotect(PROT_READ|PROT_WRITE)
//   - UnmapPages = madvise(MADV_DONTNEED) + mprotect(PROT_NONE)
//
// WithLogger decorates any Store with slog output.
//
// # Usage Example
//
//	region, err := backing.NewRegion(0x80000000, 64<<20, 4096)
//	if err != nil {
//	    return err
//	}
//	defer region.Close()
//
//	a, err := alloc.New(cfg, region)
//	...
//	addr, _ := a.Allocate(8192)
//	mem, _ := region.Bytes(addr, 8192)
//	mem[0] = 1
package backing
