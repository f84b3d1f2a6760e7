package alloc

import "fmt"

// Addr is a virtual address inside the managed range.
type Addr = uint32

// slotState tags one page slot of the managed range.
type slotState uint8

const (
	slotFree slotState = iota // not part of any allocation
	slotHead                  // first page of an allocation; pages holds the run length
	slotTail                  // any later page of an allocation
)

// slot is the metadata for one page.
type slot struct {
	state slotState
	pages uint32 // run length, only meaningful for slotHead
}

// Record is a live allocation: the base address handed to the caller and the
// number of pages behind it.
type Record struct {
	Base  Addr
	Pages uint32
}

// Size returns the allocation size in bytes for the given page size.
func (r Record) Size(pageSize uint32) uint64 {
	return uint64(r.Pages) * uint64(pageSize)
}

func (r Record) String() string {
	return fmt.Sprintf("0x%08X+%dp", r.Base, r.Pages)
}

// Run is a maximal sequence of slots with the same owner: either one
// allocation (Free=false) or one free gap (Free=true).
type Run struct {
	Slot  uint32 // first slot index
	Pages uint32 // run length in slots
	Base  Addr   // address of the first slot
	Free  bool
}

// End returns the exclusive end slot of the run.
func (r Run) End() uint32 { return r.Slot + r.Pages }
