//go:build linux || darwin || freebsd

package backing

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/pageheap/internal/buf"
)

const (
	pageInaccessible = unix.PROT_NONE
	pageMutable      = unix.PROT_READ | unix.PROT_WRITE
)

// Region is a Store backed by real virtual memory.
//
// NewRegion reserves the whole managed range as a single anonymous PROT_NONE
// mapping. MapPages flips a page range to read/write; UnmapPages discards the
// pages' contents and flips them back to PROT_NONE. Addresses handed to a
// Region are managed-range addresses: address start maps to the first byte
// of the reservation.
type Region struct {
	mu       sync.Mutex
	mem      []byte
	start    uint32
	pageSize uint32
	track    *Recorder
}

// NewRegion reserves size bytes to back the managed range beginning at start.
func NewRegion(start, size, pageSize uint32) (*Region, error) {
	if pageSize == 0 || size == 0 || size%pageSize != 0 || start%pageSize != 0 {
		return nil, fmt.Errorf("%w: start=0x%X size=0x%X page=0x%X", ErrMisaligned, start, size, pageSize)
	}
	if sys := uint32(unix.Getpagesize()); pageSize%sys != 0 {
		return nil, fmt.Errorf("%w: page=0x%X is not a multiple of the system page 0x%X", ErrMisaligned, pageSize, sys)
	}
	if uint64(start)+uint64(size) > 1<<32 {
		return nil, fmt.Errorf("%w: start=0x%X size=0x%X", ErrOutOfRange, start, size)
	}

	mem, err := unix.Mmap(-1, 0, int(size), pageInaccessible, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("backing: reserve 0x%X bytes: %w", size, err)
	}

	return &Region{
		mem:      mem,
		start:    start,
		pageSize: pageSize,
		track:    NewRecorder(pageSize),
	}, nil
}

// MapPages implements Store.
func (r *Region) MapPages(base, size uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, err := r.slice(base, size)
	if err != nil {
		return err
	}
	if err := r.track.MapPages(base, size); err != nil {
		return err
	}
	if err := unix.Mprotect(span, pageMutable); err != nil {
		// Roll back bookkeeping so the range can be mapped again later.
		_ = r.track.UnmapPages(base, size)
		return fmt.Errorf("backing: mprotect rw [0x%X, +0x%X): %w", base, size, err)
	}
	return nil
}

// UnmapPages implements Store.
func (r *Region) UnmapPages(base, size uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, err := r.slice(base, size)
	if err != nil {
		return err
	}
	if err := r.track.UnmapPages(base, size); err != nil {
		return err
	}
	if err := unix.Madvise(span, unix.MADV_DONTNEED); err != nil {
		_ = r.track.MapPages(base, size)
		return fmt.Errorf("backing: madvise [0x%X, +0x%X): %w", base, size, err)
	}
	if err := unix.Mprotect(span, pageInaccessible); err != nil {
		_ = r.track.MapPages(base, size)
		return fmt.Errorf("backing: mprotect none [0x%X, +0x%X): %w", base, size, err)
	}
	return nil
}

// Bytes returns the memory behind a mapped range.
// The slice is only valid until the range is unmapped.
func (r *Region) Bytes(base, size uint32) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, err := r.slice(base, size)
	if err != nil {
		return nil, err
	}
	want := Range{Off: uint64(base), Len: uint64(size)}
	for _, m := range r.track.Ranges() {
		if m.Off <= want.Off && want.End() <= m.End() {
			return span, nil
		}
	}
	return nil, fmt.Errorf("%w: [0x%X, +0x%X)", ErrNotMapped, base, size)
}

// Ranges implements RangeLister.
func (r *Region) Ranges() []Range {
	return r.track.Ranges()
}

// Close releases the whole reservation. Outstanding Bytes slices become invalid.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mem == nil {
		return nil
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	r.track.Reset()
	return err
}

// slice translates a managed-range address into the reservation.
func (r *Region) slice(base, size uint32) ([]byte, error) {
	if r.mem == nil {
		return nil, ErrClosed
	}
	if size == 0 || base%r.pageSize != 0 || size%r.pageSize != 0 {
		return nil, fmt.Errorf("%w: base=0x%X size=0x%X", ErrMisaligned, base, size)
	}
	if base < r.start {
		return nil, fmt.Errorf("%w: base=0x%X below 0x%X", ErrOutOfRange, base, r.start)
	}
	off := uint64(base - r.start)
	end, err := buf.CheckRange(uint64(len(r.mem)), off, uint64(size), 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return r.mem[off:end], nil
}
