package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/joshuapare/pageheap/heap/backing"
	"github.com/joshuapare/pageheap/internal/buf"
	"github.com/joshuapare/pageheap/internal/format"
)

// Allocator is a best-fit page allocator over one managed range.
//
// It owns a fixed slot table with one entry per page and delegates backing
// of the chosen pages to a backing.Store. All methods are serialized by one
// mutex; the store is called with that mutex held.
type Allocator struct {
	mu    sync.Mutex
	cfg   Config
	store backing.Store
	log   *slog.Logger

	slots []slot

	// Running totals, kept in step with slots.
	usedPages uint32
	live      int

	stats counters
}

// counters holds operation counts since construction.
type counters struct {
	AllocCalls    uint64
	AllocFailures uint64 // ErrNoSpace and ErrZeroSize
	ReleaseCalls  uint64
	BadReleases   uint64 // ErrBadAddr
	StoreFailures uint64 // errors returned by the backing store
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for allocation tracing. Events are logged
// at debug level; rejected releases and store failures at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an allocator for cfg backed by store. Every slot starts free.
// It returns a *ConfigError if cfg is invalid.
func New(cfg Config, store backing.Store, opts ...Option) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, &ConfigError{Field: "store", Message: "backing store is nil"}
	}

	a := &Allocator{
		cfg:   cfg,
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		slots: make([]slot, cfg.NumPages()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Allocate reserves the tightest free page run that holds size bytes, asks
// the backing store to map it, and returns its base address.
//
// Errors:
//   - ErrZeroSize: size is 0
//   - ErrNoSpace: no single free run is long enough (fragmented free pages
//     are never combined)
//   - any error from the backing store, wrapped; the slot table is untouched
func (a *Allocator) Allocate(size uint32) (Addr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.AllocCalls++

	if size == 0 {
		a.stats.AllocFailures++
		return 0, ErrZeroSize
	}

	// PagesFor works in uint64 so sizes near 4GB cannot wrap.
	need64 := format.PagesFor(uint64(size), uint64(a.cfg.PageSize))
	if need64 > uint64(len(a.slots)) {
		a.stats.AllocFailures++
		a.log.Debug("allocate: larger than heap", "size", size, "pages", need64)
		return 0, fmt.Errorf("%w: %d bytes needs %d pages, heap has %d",
			ErrNoSpace, size, need64, len(a.slots))
	}
	need := uint32(need64)

	start, runLen, ok := a.findBestFit(need)
	if !ok {
		a.stats.AllocFailures++
		a.log.Debug("allocate: no fit", "size", size, "pages", need)
		return 0, fmt.Errorf("%w: %d pages", ErrNoSpace, need)
	}

	base := a.addrOf(start)
	bytes := need * a.cfg.PageSize
	if err := a.store.MapPages(base, bytes); err != nil {
		a.stats.StoreFailures++
		a.log.Warn("allocate: backing store refused", "base", hexAddr(base), "size", bytes, "err", err)
		return 0, fmt.Errorf("alloc: map pages at 0x%08X (+0x%X): %w", base, bytes, err)
	}

	a.markAllocated(start, need)
	a.log.Debug("allocate",
		"size", size, "pages", need, "base", hexAddr(base), "slot", start, "run", runLen)
	return base, nil
}

// Release unmaps the allocation based at addr and frees its pages.
//
// addr must be a value previously returned by Allocate and not yet
// released. Anything else (never allocated, released twice, interior or
// misaligned address, outside the range) returns an error wrapping
// ErrBadAddr and changes nothing. If the backing store fails, the
// allocation stays live and the store's error is returned wrapped.
func (a *Allocator) Release(addr Addr) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.ReleaseCalls++

	idx, err := a.headSlot(addr)
	if err != nil {
		a.stats.BadReleases++
		a.log.Warn("release rejected", "addr", hexAddr(addr), "err", err)
		return err
	}

	pages := a.slots[idx].pages
	bytes, ok := buf.MulOverflowSafe(uint64(pages), uint64(a.cfg.PageSize))
	if !ok || bytes > uint64(a.cfg.Size()) {
		// The head slot is corrupt; refuse rather than unmap a bogus range.
		a.stats.BadReleases++
		return fmt.Errorf("%w: 0x%08X records %d pages", ErrBadAddr, addr, pages)
	}

	if err := a.store.UnmapPages(addr, uint32(bytes)); err != nil {
		a.stats.StoreFailures++
		a.log.Warn("release: backing store refused", "addr", hexAddr(addr), "size", bytes, "err", err)
		return fmt.Errorf("alloc: unmap pages at 0x%08X (+0x%X): %w", addr, bytes, err)
	}

	a.markFree(idx, pages)
	a.log.Debug("release", "addr", hexAddr(addr), "pages", pages, "slot", idx)
	return nil
}

// headSlot validates addr and returns the index of the head slot it names.
func (a *Allocator) headSlot(addr Addr) (uint32, error) {
	if !a.cfg.Contains(addr) {
		return 0, fmt.Errorf("%w: 0x%08X outside %s", ErrBadAddr, addr, a.cfg)
	}
	off := addr - a.cfg.HeapStart
	if !format.IsAligned(uint64(off), uint64(a.cfg.PageSize)) {
		return 0, fmt.Errorf("%w: 0x%08X is not page aligned", ErrBadAddr, addr)
	}

	idx := off / a.cfg.PageSize
	switch a.slots[idx].state {
	case slotHead:
		return idx, nil
	case slotTail:
		return 0, fmt.Errorf("%w: 0x%08X is inside an allocation", ErrBadAddr, addr)
	default:
		return 0, fmt.Errorf("%w: 0x%08X is not allocated", ErrBadAddr, addr)
	}
}

func (a *Allocator) markAllocated(start, pages uint32) {
	a.slots[start] = slot{state: slotHead, pages: pages}
	for i := start + 1; i < start+pages; i++ {
		a.slots[i] = slot{state: slotTail}
	}
	a.usedPages += pages
	a.live++
}

func (a *Allocator) markFree(start, pages uint32) {
	for i := start; i < start+pages; i++ {
		a.slots[i] = slot{}
	}
	a.usedPages -= pages
	a.live--
}

func (a *Allocator) addrOf(slotIdx uint32) Addr {
	return a.cfg.HeapStart + slotIdx*a.cfg.PageSize
}

// Config returns the managed range configuration.
func (a *Allocator) Config() Config {
	return a.cfg
}

// NumPages returns the number of page slots in the managed range.
func (a *Allocator) NumPages() uint32 {
	return uint32(len(a.slots))
}

// hexAddr renders addresses in log output.
type hexAddr Addr

func (h hexAddr) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("0x%08X", uint32(h)))
}
