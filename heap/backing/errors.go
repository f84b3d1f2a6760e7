package backing

import "errors"

var (
	// ErrOverlap indicates a MapPages call for a range that is already (partly) mapped.
	ErrOverlap = errors.New("backing: range overlaps a mapped range")

	// ErrNotMapped indicates an UnmapPages call for a range that was not mapped as one unit.
	ErrNotMapped = errors.New("backing: range is not mapped")

	// ErrOutOfRange indicates a range outside the reserved span.
	ErrOutOfRange = errors.New("backing: range outside reserved span")

	// ErrMisaligned indicates a base or size that is not a multiple of the page size.
	ErrMisaligned = errors.New("backing: range not page aligned")

	// ErrUnsupportedPlatform indicates that Region is not available on this OS.
	ErrUnsupportedPlatform = errors.New("backing: mmap regions not supported on this platform")

	// ErrClosed indicates use of a Region after Close.
	ErrClosed = errors.New("backing: region closed")
)
