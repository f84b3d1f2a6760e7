package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates that no free run is large enough for the request.
	// It is recoverable: the allocator state is unchanged.
	ErrNoSpace = errors.New("alloc: no free run large enough")

	// ErrZeroSize indicates a zero-byte allocation request.
	ErrZeroSize = errors.New("alloc: size must be at least one byte")

	// ErrBadAddr indicates an address that is not the base of a live allocation
	// (never allocated, already released, misaligned, or outside the range).
	ErrBadAddr = errors.New("alloc: not a live allocation base")

	// ErrBadConfig indicates managed-range constants that cannot describe a heap.
	ErrBadConfig = errors.New("alloc: invalid configuration")

	// ErrUnsupported is matched by every *UnsupportedError.
	ErrUnsupported = errors.ErrUnsupported
)

// ConfigError describes which configuration field is invalid.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("alloc: invalid configuration: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrBadConfig }

// UnsupportedError is returned by operations this allocator deliberately
// does not implement.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("alloc: %s: unsupported operation", e.Op)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }
