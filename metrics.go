package mempool

// PoolMetrics is a point-in-time snapshot of a pool.
type PoolMetrics struct {
	Name             string
	Capacity         int     // Buffer size in bytes
	MaxEntries       int     // Slot table size
	LiveEntries      int     // Slots currently holding a reservation
	FreeSlots        int     // MaxEntries - LiveEntries
	BytesInUse       int     // Sum of live reservation sizes
	LargestFreeBlock int     // Largest single reservation that would still fit
	Utilization      float64 // BytesInUse / Capacity (0.0-1.0)

	Reservations  uint64 // Successful Reserve calls
	Releases      uint64 // Successful Release calls
	OutOfSpace    uint64 // Reserve calls that failed with ErrOutOfSpace
	TableFull     uint64 // Reserve calls that failed with ErrTableFull
	HeapFallbacks uint64 // Allocations served by the heap instead of this pool
}

// Capacity returns the buffer size in bytes.
func (p *Pool) Capacity() int {
	return len(p.buf)
}

// MaxEntries returns the slot table size.
func (p *Pool) MaxEntries() int {
	return len(p.t.entries)
}

// LiveEntries returns the number of live reservations.
func (p *Pool) LiveEntries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t.live()
}

// BytesInUse returns the sum of live reservation sizes.
func (p *Pool) BytesInUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t.inUse
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (p *Pool) Utilization() float64 {
	return float64(p.BytesInUse()) / float64(p.Capacity())
}

// Metrics returns a snapshot of pool statistics.
func (p *Pool) Metrics() PoolMetrics {
	p.mu.Lock()
	live, inUse, largest := p.t.live(), p.t.inUse, p.t.largestGap()
	p.mu.Unlock()

	return PoolMetrics{
		Name:             p.name,
		Capacity:         p.Capacity(),
		MaxEntries:       p.MaxEntries(),
		LiveEntries:      live,
		FreeSlots:        p.MaxEntries() - live,
		BytesInUse:       inUse,
		LargestFreeBlock: largest,
		Utilization:      float64(inUse) / float64(p.Capacity()),
		Reservations:     p.reservations.Load(),
		Releases:         p.releases.Load(),
		OutOfSpace:       p.outOfSpace.Load(),
		TableFull:        p.tableFull.Load(),
		HeapFallbacks:    p.fallbacks.Load(),
	}
}
