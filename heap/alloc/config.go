package alloc

import (
	"fmt"

	"github.com/joshuapare/pageheap/internal/format"
)

const (
	// DefaultHeapStart is where the 32-bit user heap begins.
	DefaultHeapStart = 0x80000000

	// DefaultHeapMax is the exclusive end of the user heap, 512MB above the start.
	DefaultHeapMax = 0xA0000000

	// DefaultPageSize is the page size of the user heap.
	DefaultPageSize = format.DefaultPageSize
)

// Config describes the managed range [HeapStart, HeapMax) and its page size.
type Config struct {
	HeapStart Addr   `yaml:"heap_start" json:"heap_start"`
	HeapMax   Addr   `yaml:"heap_max" json:"heap_max"`
	PageSize  uint32 `yaml:"page_size" json:"page_size"`
}

// DefaultConfig returns the layout of the 32-bit user heap.
func DefaultConfig() Config {
	return Config{
		HeapStart: DefaultHeapStart,
		HeapMax:   DefaultHeapMax,
		PageSize:  DefaultPageSize,
	}
}

// Validate checks the range invariants. It returns a *ConfigError (matching
// ErrBadConfig) naming the first offending field.
func (c Config) Validate() error {
	ps := uint64(c.PageSize)
	switch {
	case !format.IsPow2(ps):
		return &ConfigError{Field: "page_size", Message: fmt.Sprintf("%d is not a power of two", c.PageSize)}
	case c.HeapMax <= c.HeapStart:
		return &ConfigError{
			Field:   "heap_max",
			Message: fmt.Sprintf("0x%X must be above heap_start 0x%X", c.HeapMax, c.HeapStart),
		}
	case !format.IsAligned(uint64(c.HeapStart), ps):
		return &ConfigError{
			Field:   "heap_start",
			Message: fmt.Sprintf("0x%X is not aligned to page size 0x%X", c.HeapStart, c.PageSize),
		}
	case !format.IsAligned(uint64(c.HeapMax-c.HeapStart), ps):
		return &ConfigError{
			Field:   "heap_max",
			Message: fmt.Sprintf("range length 0x%X is not a multiple of page size 0x%X", c.HeapMax-c.HeapStart, c.PageSize),
		}
	}
	return nil
}

// NumPages returns N, the number of page slots in the managed range.
// It is 0 for configurations that do not describe a range.
func (c Config) NumPages() uint32 {
	if c.PageSize == 0 {
		return 0
	}
	return c.Size() / c.PageSize
}

// Size returns the managed range length in bytes.
func (c Config) Size() uint32 {
	if c.HeapMax <= c.HeapStart {
		return 0
	}
	return c.HeapMax - c.HeapStart
}

// Contains reports whether addr lies inside the managed range.
func (c Config) Contains(addr Addr) bool {
	return addr >= c.HeapStart && addr < c.HeapMax
}

func (c Config) String() string {
	return fmt.Sprintf("[0x%08X, 0x%08X) page=%d slots=%d", c.HeapStart, c.HeapMax, c.PageSize, c.NumPages())
}
