// # Overview
//
// The checks here recompute allocator invariants from the outside, using
// only the exported introspection API (Runs, Stats, Records) and the
// backing store's RangeLister. They are used by tests after every mutation
// and by `heapctl simulate` after every step.
//
// Validation categories:
//   - Runs: the run table tiles [0, N) with no gap or overlap, every run has
//     at least one page, bases match their slot address, and free runs are
//     maximal
//   - Accounting: Stats counters agree with the run table
//   - Backing: the store maps exactly the live records
//
// # Quick Start
//
//	rec := backing.NewRecorder(cfg.PageSize)
//	a, _ := alloc.New(cfg, rec)
//	// ... allocate and release ...
//	if err := verify.AllInvariants(a, rec); err != nil {
//	    t.Fatalf("heap invalid: %v", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure. Slot is the
// slot index where the problem was found, or -1 when the check is not tied
// to one slot:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("Type: %s\n", verr.Type)
//	    fmt.Printf("Slot: %d\n", verr.Slot)
//	    fmt.Printf("Message: %s\n", verr.Message)
//	}
//
// # AllInvariants
//
// Checks performed (in order):
//  1. Runs
//  2. Accounting
//  3. Backing (skipped when the lister is nil)
//
// Returns first error encountered, or nil if all pass.
package verify
