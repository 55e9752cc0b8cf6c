// Package mempool implements a fixed-capacity memory pool and a typed
// allocator that draws container storage from it.
//
// # Overview
//
// A Pool owns one byte buffer of fixed size and a fixed table of entry slots.
// Each live reservation occupies one slot, so a pool can run out of slots
// before it runs out of bytes. Reservations are placed at the lowest address
// where they fit; there is no compaction and no growth.
//
// An Allocator[T] turns "n elements of T" requests into pool reservations and
// falls back to the Go heap whenever the pool says no. It is the piece
// containers talk to:
//
//	pool := mempool.Must(4096, 32, mempool.WithName("strings"))
//	alloc := mempool.BoundTo[byte](pool)
//
//	buf := alloc.Allocate(100) // from the pool
//	defer alloc.Deallocate(buf, 100)
//
// # Provenance
//
// Deallocate decides where a slice came from by testing its address against
// the pool's Bounds. Slices inside the buffer are released to the pool; any
// other slice came from the heap and is left to the garbage collector.
//
// # Errors
//
// Reserve fails with ErrOutOfSpace or ErrTableFull; the allocator absorbs both
// and falls back to the heap. Release fails with ErrAddressNotFound for an
// address the pool never handed out or already took back. That error is a
// caller bug and is always returned, never swallowed.
//
// # Thread Safety
//
// Every Pool has its own mutex around Reserve, Release and Clear. Allocators
// only carry the pool reference and can be copied freely between goroutines.
//
// # Memory Layout
//
// The buffer is a Go []byte, which the garbage collector does not scan for
// pointers. Element types that contain pointers are therefore always served
// from the heap. Start addresses are aligned to the pool alignment (pointer
// size unless set with WithAlignment).
//
// # Unbound Allocators
//
// The zero Allocator uses the Default pool, a process-wide pool of
// DefaultCapacity bytes and DefaultMaxEntries slots created on first use.
// Programs that want a differently sized default install their own with
// SetDefault before any allocation happens.
//
// # Metrics and Monitoring
//
//	m := pool.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Heap fallbacks: %d\n", m.HeapFallbacks)
//
// Prometheus collectors are attached with WithMetrics(NewMetrics(reg)).
package mempool
