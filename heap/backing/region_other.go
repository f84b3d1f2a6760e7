//go:build !(linux || darwin || freebsd)

package backing

// Region is unavailable on this platform; NewRegion always fails.
type Region struct{}

// NewRegion reports ErrUnsupportedPlatform.
func NewRegion(start, size, pageSize uint32) (*Region, error) {
	return nil, ErrUnsupportedPlatform
}

// MapPages implements Store.
func (r *Region) MapPages(base, size uint32) error { return ErrUnsupportedPlatform }

// UnmapPages implements Store.
func (r *Region) UnmapPages(base, size uint32) error { return ErrUnsupportedPlatform }

// Bytes always fails on this platform.
func (r *Region) Bytes(base, size uint32) ([]byte, error) { return nil, ErrUnsupportedPlatform }

// Ranges implements RangeLister.
func (r *Region) Ranges() []Range { return nil }

// Close is a no-op.
func (r *Region) Close() error { return nil }
