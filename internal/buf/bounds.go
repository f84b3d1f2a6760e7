package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uint64.
func AddOverflowSafe(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow uint64.
// This is essential for pageCount * pageSize calculations.
func MulOverflowSafe(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// CheckRange validates that count units of unitSize bytes starting at offset
// fit inside a span of spanLen bytes. Returns the end offset if valid, or an
// error describing the specific failure (overflow or out of bounds).
//
// This is the recommended way to validate a page range before touching it:
//
//	end, err := buf.CheckRange(spanLen, off, pages, pageSize)
//	if err != nil {
//	    return fmt.Errorf("region: %w", err)
//	}
//	// Safe to access [off, end)
func CheckRange(spanLen, offset, count, unitSize uint64) (uint64, error) {
	total, ok := MulOverflowSafe(count, unitSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * unit=%d", count, unitSize)
	}

	end, ok := AddOverflowSafe(offset, total)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", offset, total)
	}

	if end > spanLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, spanLen)
	}

	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n uint64) ([]byte, bool) {
	end, err := CheckRange(uint64(len(b)), off, n, 1)
	if err != nil {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n uint64) bool {
	_, ok := Slice(b, off, n)
	return ok
}
