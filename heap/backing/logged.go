package backing

import (
	"fmt"
	"log/slog"
)

// logged wraps a Store and logs every call.
type logged struct {
	next Store
	log  *slog.Logger
}

// WithLogger returns a Store that forwards to next and logs each call at
// debug level, failures at warn level. A nil logger returns next unchanged.
func WithLogger(next Store, logger *slog.Logger) Store {
	if logger == nil {
		return next
	}
	return &logged{next: next, log: logger.With("component", "backing")}
}

func (l *logged) MapPages(base, size uint32) error {
	err := l.next.MapPages(base, size)
	l.report("map", base, size, err)
	return err
}

func (l *logged) UnmapPages(base, size uint32) error {
	err := l.next.UnmapPages(base, size)
	l.report("unmap", base, size, err)
	return err
}

// Ranges forwards to the wrapped store when it can list its ranges.
func (l *logged) Ranges() []Range {
	if rl, ok := l.next.(RangeLister); ok {
		return rl.Ranges()
	}
	return nil
}

func (l *logged) report(op string, base, size uint32, err error) {
	if err != nil {
		l.log.Warn("backing call failed", "op", op, "base", hex(base), "size", size, "err", err)
		return
	}
	l.log.Debug("backing call", "op", op, "base", hex(base), "size", size)
}

// hex renders an address the way the rest of the module prints them.
type hex uint32

func (h hex) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("0x%08X", uint32(h)))
}
