package mempool

import (
	"fmt"
	"math/bits"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Pool is a fixed-size byte buffer plus a fixed table of entry slots. The
// buffer is allocated once by New and never resized or moved. Reserve,
// Release and Clear are serialized by the pool's mutex; Bounds and Owns
// read immutable state and take no lock.
//
// A Pool must stay reachable for as long as any slice it handed out is in
// use, including slices held by containers built on an Allocator bound to it.
type Pool struct {
	name    string
	logger  log.Logger
	metrics *Metrics

	buf   []byte
	start uintptr
	end   uintptr
	align uintptr

	mu sync.Mutex
	t  *slotTable

	reservations atomic.Uint64
	releases     atomic.Uint64
	outOfSpace   atomic.Uint64
	tableFull    atomic.Uint64
	fallbacks    atomic.Uint64
}

// New creates a pool of capacity bytes that tracks at most maxEntries live
// reservations at once.
func New(capacity, maxEntries int, opts ...Option) (*Pool, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "capacity %d", capacity)
	}
	if maxEntries <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "max entries %d", maxEntries)
	}
	if o.alignment <= 0 || bits.OnesCount(uint(o.alignment)) != 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "alignment %d is not a power of two", o.alignment)
	}
	if o.logger == nil {
		o.logger = log.NewNopLogger()
	}

	// Over-allocate so the usable region can start on an aligned address.
	align := uintptr(o.alignment)
	raw := make([]byte, capacity+o.alignment-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	shift := int(alignUp(base, align) - base)
	buf := raw[shift : shift+capacity : shift+capacity]

	start := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	p := &Pool{
		name:    o.name,
		logger:  log.With(o.logger, "pool", o.name),
		metrics: o.metrics,
		buf:     buf,
		start:   start,
		end:     start + uintptr(capacity),
		align:   align,
		t:       newSlotTable(start, start+uintptr(capacity), maxEntries, align),
	}
	p.metrics.observe(p.name, 0, 0)
	return p, nil
}

// Must is like New but panics on error.
func Must(capacity, maxEntries int, opts ...Option) *Pool {
	p, err := New(capacity, maxEntries, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Reserve claims length contiguous bytes at the lowest free address. The
// returned slice has len and cap equal to length and may hold stale data.
// It fails with ErrTableFull when every slot is live and with ErrOutOfSpace
// when no gap is large enough.
func (p *Pool) Reserve(length int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr, err := p.t.reserve(length)
	if err != nil {
		p.recordFailure(err, length)
		return nil, err
	}
	p.reservations.Inc()
	p.metrics.reserved(p.name)
	p.metrics.observe(p.name, p.t.inUse, p.t.live())

	off := int(addr - p.start)
	return p.buf[off : off+length : off+length], nil
}

// Release frees the reservation starting exactly at address. An address that
// matches no live entry yields ErrAddressNotFound and leaves the table as it
// was.
func (p *Pool) Release(address uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.t.release(address); err != nil {
		level.Error(p.logger).Log("msg", "release of unknown address", "addr", fmt.Sprintf("%#x", address), "err", err)
		return err
	}
	p.releases.Inc()
	p.metrics.released(p.name)
	p.metrics.observe(p.name, p.t.inUse, p.t.live())
	return nil
}

// ReleaseBytes releases the reservation b was returned for.
func (p *Pool) ReleaseBytes(b []byte) error {
	if cap(b) == 0 {
		return errors.Wrap(ErrAddressNotFound, "release of empty slice")
	}
	return p.Release(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
}

// Clear frees every slot at once. Callers must make sure no slice obtained
// from Reserve is still in use.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.t.clear()
	p.metrics.observe(p.name, 0, 0)
	level.Debug(p.logger).Log("msg", "pool cleared")
}

// Bounds returns the buffer's start address and the address one past its end.
func (p *Pool) Bounds() (start, end uintptr) {
	return p.start, p.end
}

// OwnsAddress reports whether addr lies inside the pool buffer.
func (p *Pool) OwnsAddress(addr uintptr) bool {
	return addr >= p.start && addr < p.end
}

// Owns reports whether ptr points into the pool buffer.
func (p *Pool) Owns(ptr unsafe.Pointer) bool {
	return p.OwnsAddress(uintptr(ptr))
}

// Entries returns the live entries sorted by address.
func (p *Pool) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t.snapshot()
}

// Name returns the label given with WithName.
func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) String() string {
	m := p.Metrics()
	return fmt.Sprintf("%s: %s/%s in use, %d/%d entries, largest free block %s",
		m.Name,
		humanize.IBytes(uint64(m.BytesInUse)),
		humanize.IBytes(uint64(m.Capacity)),
		m.LiveEntries, m.MaxEntries,
		humanize.IBytes(uint64(m.LargestFreeBlock)),
	)
}

// recordFallback is called by allocators that served a request from the heap.
func (p *Pool) recordFallback() {
	p.fallbacks.Inc()
	p.metrics.fellBack(p.name)
}

func (p *Pool) recordFailure(err error, length int) {
	reason := "invalid"
	switch {
	case errors.Is(err, ErrOutOfSpace):
		reason = "out_of_space"
		p.outOfSpace.Inc()
	case errors.Is(err, ErrTableFull):
		reason = "table_full"
		p.tableFull.Inc()
	}
	p.metrics.failed(p.name, reason)
	level.Debug(p.logger).Log("msg", "reservation failed", "bytes", length, "reason", reason)
}
