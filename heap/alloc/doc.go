// Package alloc provides a page-granular, best-fit allocator for a fixed
// virtual address range.
//
// # Overview
//
// The allocator manages [HeapStart, HeapMax) as N page-sized slots. It only
// does bookkeeping; the pages themselves are backed and unbacked by a
// backing.Store (see github.com/joshuapare/pageheap/heap/backing).
//
//   - Allocate(size): round size up to whole pages, pick the tightest free
//     run that fits, map it through the store, return its base address
//   - Release(addr): validate addr, unmap the run through the store, free it
//
// # Slot Table
//
// Every slot carries an explicit state:
//
//	Free                  not part of any allocation
//	Head(pages)           first page of an allocation, holds its length
//	Tail                  any later page of an allocation
//
// Release finds an allocation's length in O(1) from the head slot its base
// address names. The best-fit scan skips a whole allocation in one step.
//
// # Best Fit
//
// The scan walks the table once. Each maximal free run that is long enough
// is compared with the best so far and replaces it only when strictly
// shorter, so equally short runs resolve to the lowest address. Free pages
// in separate runs are never combined: a request larger than the longest
// run fails with ErrNoSpace even when the total free space would suffice.
//
// # Usage Example
//
//	cfg := alloc.DefaultConfig()
//	store := backing.NewRecorder(cfg.PageSize)
//	a, err := alloc.New(cfg, store)
//	if err != nil {
//	    return err
//	}
//
//	addr, err := a.Allocate(10000) // 3 pages
//	if errors.Is(err, alloc.ErrNoSpace) {
//	    // recoverable: release something and retry
//	}
//
//	if err := a.Release(addr); err != nil {
//	    return err
//	}
//
// # Errors
//
//   - ErrNoSpace: no free run is long enough
//   - ErrZeroSize: zero-byte request
//   - ErrBadAddr: Release of anything but a live base address
//   - ErrBadConfig: invalid range constants (*ConfigError)
//   - ErrUnsupported: shared memory, realloc, expand/shrink (*UnsupportedError)
//
// Store failures are returned wrapped. Metadata only changes after the
// store reports success.
//
// # Thread Safety
//
// Allocator methods are serialized by an internal mutex.
package alloc
