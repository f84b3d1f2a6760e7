package backing

import (
	"fmt"
	"sort"
	"sync"
)

// Range is a byte range of the managed address space.
type Range struct {
	Off uint64 // Start address
	Len uint64 // Length in bytes
}

// End returns the exclusive end address of the range.
func (r Range) End() uint64 { return r.Off + r.Len }

// CallKind identifies a Store primitive.
type CallKind uint8

const (
	CallMap CallKind = iota + 1
	CallUnmap
)

func (k CallKind) String() string {
	switch k {
	case CallMap:
		return "map"
	case CallUnmap:
		return "unmap"
	default:
		return fmt.Sprintf("CallKind(%d)", uint8(k))
	}
}

// Call is one recorded Store invocation.
type Call struct {
	Kind CallKind
	Base uint32
	Size uint32
	Err  error // error returned to the caller, nil on success
}

// Recorder is an in-memory Store that tracks which ranges are mapped.
//
// It enforces the contract the allocator relies on: a range is mapped at most
// once and unmapped exactly as it was mapped. Violations return ErrOverlap or
// ErrNotMapped instead of silently succeeding, which makes Recorder the
// reference Store for tests.
//
// Recorder is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	pageSize uint32
	mapped   []Range // exact mapped units, sorted by Off
	calls    []Call
	failNext error
}

// NewRecorder creates a Recorder that checks alignment against pageSize.
// A pageSize of 0 disables alignment checks.
func NewRecorder(pageSize uint32) *Recorder {
	return &Recorder{
		pageSize: pageSize,
		mapped:   make([]Range, 0, defaultRangeCapacity),
	}
}

// defaultRangeCapacity is the pre-allocated capacity for mapped ranges.
const defaultRangeCapacity = 64

// FailNext makes the next MapPages or UnmapPages call return err without
// changing any state.
func (r *Recorder) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

// MapPages implements Store.
func (r *Recorder) MapPages(base, size uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.mapLocked(base, size)
	r.calls = append(r.calls, Call{Kind: CallMap, Base: base, Size: size, Err: err})
	return err
}

func (r *Recorder) mapLocked(base, size uint32) error {
	if err := r.takeFailure(); err != nil {
		return err
	}
	if err := r.checkAligned(base, size); err != nil {
		return err
	}

	want := Range{Off: uint64(base), Len: uint64(size)}
	i := sort.Search(len(r.mapped), func(i int) bool {
		return r.mapped[i].End() > want.Off
	})
	if i < len(r.mapped) && r.mapped[i].Off < want.End() {
		return fmt.Errorf("%w: [0x%X, 0x%X) meets [0x%X, 0x%X)",
			ErrOverlap, want.Off, want.End(), r.mapped[i].Off, r.mapped[i].End())
	}

	r.mapped = append(r.mapped, Range{})
	copy(r.mapped[i+1:], r.mapped[i:])
	r.mapped[i] = want
	return nil
}

// UnmapPages implements Store.
func (r *Recorder) UnmapPages(base, size uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.unmapLocked(base, size)
	r.calls = append(r.calls, Call{Kind: CallUnmap, Base: base, Size: size, Err: err})
	return err
}

func (r *Recorder) unmapLocked(base, size uint32) error {
	if err := r.takeFailure(); err != nil {
		return err
	}
	if err := r.checkAligned(base, size); err != nil {
		return err
	}

	i := sort.Search(len(r.mapped), func(i int) bool {
		return r.mapped[i].Off >= uint64(base)
	})
	if i == len(r.mapped) || r.mapped[i].Off != uint64(base) || r.mapped[i].Len != uint64(size) {
		return fmt.Errorf("%w: [0x%X, +0x%X)", ErrNotMapped, base, size)
	}
	r.mapped = append(r.mapped[:i], r.mapped[i+1:]...)
	return nil
}

func (r *Recorder) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *Recorder) checkAligned(base, size uint32) error {
	if size == 0 {
		return fmt.Errorf("%w: zero size at 0x%X", ErrMisaligned, base)
	}
	if r.pageSize == 0 {
		return nil
	}
	if base%r.pageSize != 0 || size%r.pageSize != 0 {
		return fmt.Errorf("%w: base=0x%X size=0x%X page=0x%X", ErrMisaligned, base, size, r.pageSize)
	}
	return nil
}

// Mapped returns the mapped units exactly as they were mapped, sorted by address.
func (r *Recorder) Mapped() []Range {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Range, len(r.mapped))
	copy(result, r.mapped)
	return result
}

// Ranges implements RangeLister. Adjacent units are merged.
func (r *Recorder) Ranges() []Range {
	return Coalesce(r.Mapped())
}

// MappedBytes returns the total number of mapped bytes.
func (r *Recorder) MappedBytes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total uint64
	for _, m := range r.mapped {
		total += m.Len
	}
	return total
}

// Calls returns every recorded call, including failed ones.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Call, len(r.calls))
	copy(result, r.calls)
	return result
}

// Reset forgets all mapped ranges and recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mapped = r.mapped[:0]
	r.calls = nil
	r.failNext = nil
}

// Coalesce sorts ranges and merges overlapping or adjacent ones.
//
// Returns a new slice of non-overlapping, sorted ranges.
func Coalesce(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Off < sorted[j].Off
	})

	merged := make([]Range, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
