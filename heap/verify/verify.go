// Package verify provides validation functions for page heap state.
// These helpers are used in tests and by heapctl to ensure allocator
// invariants are maintained.
package verify

import (
	"fmt"

	"github.com/joshuapare/pageheap/heap/alloc"
	"github.com/joshuapare/pageheap/heap/backing"
	"github.com/joshuapare/pageheap/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Slot    int // slot index where the error occurred (-1 if N/A)
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Slot >= 0 {
		return fmt.Sprintf("%s at slot %d: %s", e.Type, e.Slot, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the allocator's run table, its accounting and,
// when lister is non-nil, the backing store's mapped ranges.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(a *alloc.Allocator, lister backing.RangeLister) error {
	runs := a.Runs()
	if err := Runs(a.Config(), runs); err != nil {
		return err
	}
	if err := Accounting(a.Stats(), runs); err != nil {
		return err
	}
	if lister == nil {
		return nil
	}
	return Backing(a.Records(), lister.Ranges(), a.Config().PageSize)
}

// Runs validates that runs tile the slot table of cfg exactly.
func Runs(cfg alloc.Config, runs []alloc.Run) error {
	n := cfg.NumPages()
	var next uint32

	for i, r := range runs {
		slot := int(r.Slot)
		if r.Slot != next {
			kind := "gap"
			if r.Slot < next {
				kind = "overlap"
			}
			return &ValidationError{
				Type:    "Runs",
				Message: fmt.Sprintf("%s before run %d: starts at slot %d, expected %d", kind, i, r.Slot, next),
				Slot:    slot,
				Details: map[string]any{"run": i, "expected": next},
			}
		}
		if r.Pages == 0 {
			return &ValidationError{
				Type:    "Runs",
				Message: fmt.Sprintf("run %d is empty", i),
				Slot:    slot,
			}
		}
		if r.End() > n || r.End() < r.Slot {
			return &ValidationError{
				Type:    "Runs",
				Message: fmt.Sprintf("run %d ends at slot %d beyond table of %d", i, r.End(), n),
				Slot:    slot,
				Details: map[string]any{"pages": r.Pages, "slots": n},
			}
		}

		want := cfg.HeapStart + r.Slot*cfg.PageSize
		if r.Base != want || !format.IsAligned(uint64(r.Base-cfg.HeapStart), uint64(cfg.PageSize)) {
			return &ValidationError{
				Type:    "Runs",
				Message: fmt.Sprintf("run %d base 0x%08X does not match slot address 0x%08X", i, r.Base, want),
				Slot:    slot,
				Details: map[string]any{"base": r.Base, "expected": want},
			}
		}

		if r.Free && i > 0 && runs[i-1].Free {
			return &ValidationError{
				Type:    "Runs",
				Message: fmt.Sprintf("free runs %d and %d are adjacent", i-1, i),
				Slot:    slot,
			}
		}
		next = r.End()
	}

	if next != n {
		return &ValidationError{
			Type:    "Runs",
			Message: fmt.Sprintf("runs cover %d of %d slots", next, n),
			Slot:    int(next),
			Details: map[string]any{"covered": next, "slots": n},
		}
	}
	return nil
}

// Accounting validates that the page and record counters in stats agree
// with the run table.
func Accounting(stats alloc.Stats, runs []alloc.Run) error {
	var used, free, largest uint32
	var records, freeRuns int
	for _, r := range runs {
		if r.Free {
			free += r.Pages
			freeRuns++
			largest = max(largest, r.Pages)
			continue
		}
		used += r.Pages
		records++
	}

	checks := []struct {
		name      string
		got, want any
	}{
		{"used pages", stats.UsedPages, used},
		{"free pages", stats.FreePages, free},
		{"total pages", stats.TotalPages, used + free},
		{"live records", stats.LiveRecords, records},
		{"free runs", stats.FreeRuns, freeRuns},
		{"largest free run", stats.LargestFree, largest},
	}
	for _, c := range checks {
		if c.got != c.want {
			return &ValidationError{
				Type:    "Accounting",
				Message: fmt.Sprintf("%s mismatch: stats=%v, table=%v", c.name, c.got, c.want),
				Slot:    -1,
				Details: map[string]any{"stats": c.got, "table": c.want},
			}
		}
	}
	return nil
}

// Backing validates that the ranges a backing store reports as mapped are
// exactly the live records. Adjacent records merge into one range.
func Backing(records []alloc.Record, ranges []backing.Range, pageSize uint32) error {
	want := make([]backing.Range, 0, len(records))
	for _, r := range records {
		if r.Pages == 0 {
			return &ValidationError{
				Type:    "Backing",
				Message: fmt.Sprintf("record %s has no pages", r),
				Slot:    -1,
			}
		}
		want = append(want, backing.Range{Off: uint64(r.Base), Len: r.Size(pageSize)})
	}
	want = backing.Coalesce(want)
	got := backing.Coalesce(ranges)

	if len(got) != len(want) {
		return &ValidationError{
			Type:    "Backing",
			Message: fmt.Sprintf("store maps %d ranges, allocator expects %d", len(got), len(want)),
			Slot:    -1,
			Details: map[string]any{"mapped": got, "expected": want},
		}
	}
	for i := range want {
		if got[i] != want[i] {
			return &ValidationError{
				Type: "Backing",
				Message: fmt.Sprintf("range %d mismatch: store [0x%X, 0x%X), allocator [0x%X, 0x%X)",
					i, got[i].Off, got[i].End(), want[i].Off, want[i].End()),
				Slot:    -1,
				Details: map[string]any{"mapped": got[i], "expected": want[i]},
			}
		}
	}
	return nil
}
