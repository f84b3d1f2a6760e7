package backing

// Store is the collaborator that actually backs virtual pages.
// The allocator only decides WHERE an allocation lives; a Store makes the
// pages at that address accessible (MapPages) or inaccessible (UnmapPages).
//
// Both calls are synchronous. base is always page aligned and size is always
// a non-zero multiple of the page size. An error means the call had no
// effect: the allocator leaves its metadata unchanged when a Store fails.
type Store interface {
	// MapPages makes size bytes starting at base backed and accessible.
	MapPages(base, size uint32) error

	// UnmapPages makes size bytes starting at base unbacked and inaccessible.
	UnmapPages(base, size uint32) error
}

// RangeLister is implemented by stores that can report what they currently map.
// It is used by verification to cross-check the store against the allocator.
type RangeLister interface {
	// Ranges returns the mapped ranges, sorted and coalesced.
	Ranges() []Range
}
