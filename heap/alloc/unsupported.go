package alloc

// The operations below exist on the classic user heap API but are outside
// what this allocator provides. Each fails with an *UnsupportedError so a
// caller can tell "not provided" apart from a real failure.

// SharedAlloc would allocate a named variable shared between processes.
func (a *Allocator) SharedAlloc(name string, size uint32, writable bool) (Addr, error) {
	return 0, &UnsupportedError{Op: "shared alloc"}
}

// SharedGet would map a shared variable owned by another process.
func (a *Allocator) SharedGet(ownerID int32, name string) (Addr, error) {
	return 0, &UnsupportedError{Op: "shared get"}
}

// SharedFree would release a shared variable.
func (a *Allocator) SharedFree(addr Addr) error {
	return &UnsupportedError{Op: "shared free"}
}

// Realloc would resize an allocation in place or by moving it.
func (a *Allocator) Realloc(addr Addr, newSize uint32) (Addr, error) {
	return 0, &UnsupportedError{Op: "realloc"}
}

// Expand would grow the managed range.
func (a *Allocator) Expand(newSize uint32) error {
	return &UnsupportedError{Op: "expand"}
}

// Shrink would shrink the managed range.
func (a *Allocator) Shrink(newSize uint32) error {
	return &UnsupportedError{Op: "shrink"}
}

// FreeHeap would release an allocation made by the growable heap.
func (a *Allocator) FreeHeap(addr Addr) error {
	return &UnsupportedError{Op: "free heap"}
}
