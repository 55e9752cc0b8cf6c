package mempool

import (
	"sync"

	"go.uber.org/atomic"
)

// Size of the pool unbound allocators fall back to.
const (
	DefaultCapacity   = 4096
	DefaultMaxEntries = 64
)

var (
	defaultPool atomic.Pointer[Pool]
	defaultMu   sync.Mutex // serializes creation and SetDefault
)

// Default returns the process-wide pool used by unbound allocators, creating
// it on first use unless SetDefault installed one.
func Default() *Pool {
	if p := defaultPool.Load(); p != nil {
		return p
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if p := defaultPool.Load(); p != nil {
		return p
	}
	p := Must(DefaultCapacity, DefaultMaxEntries, WithName("default"))
	defaultPool.Store(p)
	return p
}

// SetDefault installs p as the process-wide pool. It must run before anything
// uses the default pool, typically at program start.
func SetDefault(p *Pool) error {
	if p == nil {
		return ErrNilPool
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	switch cur := defaultPool.Load(); cur {
	case nil:
		defaultPool.Store(p)
		return nil
	case p:
		return nil
	default:
		return ErrDefaultInUse
	}
}
