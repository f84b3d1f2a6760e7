package format

// Page arithmetic for the managed heap range.
// Every helper takes the alignment as a parameter because the page size is a
// constructor argument, not a compile-time constant. Alignments must be
// powers of two; callers validate that once at configuration time.

// DefaultPageSize is the default heap page size (4KB).
const DefaultPageSize = 0x1000

// IsPow2 reports whether n is a non-zero power of two.
func IsPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// RoundUp returns n rounded up to the next multiple of align.
// The second result is false when the rounded value does not fit in uint64.
//
// Example:
//
//	RoundUp(1, 4096)    = 4096
//	RoundUp(4096, 4096) = 4096
//	RoundUp(4097, 4096) = 8192
func RoundUp(n, align uint64) (uint64, bool) {
	mask := align - 1
	if n > ^uint64(0)-mask {
		return 0, false
	}
	return (n + mask) &^ mask, true
}

// AlignDown returns n rounded down to a multiple of align.
//
// Example:
//
//	AlignDown(4097, 4096) = 4096
//	AlignDown(4095, 4096) = 0
func AlignDown(n, align uint64) uint64 {
	return n &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align.
func IsAligned(n, align uint64) bool {
	return n&(align-1) == 0
}

// PagesFor returns the number of pages of pageSize needed to hold size bytes.
// PagesFor(0, ps) is 0.
func PagesFor(size, pageSize uint64) uint64 {
	rounded, ok := RoundUp(size, pageSize)
	if !ok {
		return size/pageSize + 1
	}
	return rounded / pageSize
}
