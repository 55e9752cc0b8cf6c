package mempool

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Allocator hands out []T backed by a Pool, falling back to the Go heap when
// the pool cannot serve a request. It holds a non-owning reference to the
// pool; the pool must outlive the allocator and everything allocated through
// it.
//
// The zero value is unbound and uses the Default pool. Allocators are small
// values and safe to copy and share between goroutines.
type Allocator[T any] struct {
	pool *Pool
}

// NewAllocator returns an unbound allocator.
func NewAllocator[T any]() Allocator[T] {
	return Allocator[T]{}
}

// BoundTo returns an allocator bound to p.
func BoundTo[T any](p *Pool) Allocator[T] {
	return Allocator[T]{pool: p}
}

// Rebind returns an allocator for U that shares a's pool.
func Rebind[U, T any](a Allocator[T]) Allocator[U] {
	return Allocator[U]{pool: a.pool}
}

// Bind ties an unbound allocator to p. Binding is one-way: an allocator bound
// to another pool can't be moved.
func (a *Allocator[T]) Bind(p *Pool) error {
	if p == nil {
		return ErrNilPool
	}
	if a.pool != nil && a.pool != p {
		return errors.Wrapf(ErrAlreadyBound, "bound to %q, asked for %q", a.pool.name, p.name)
	}
	a.pool = p
	return nil
}

// Bound reports whether Bind was called.
func (a Allocator[T]) Bound() bool {
	return a.pool != nil
}

// Pool returns the pool a allocates from: the bound pool, or Default.
func (a Allocator[T]) Pool() *Pool {
	if a.pool != nil {
		return a.pool
	}
	return Default()
}

// Equal reports whether memory from a may be deallocated through b. It never
// creates the Default pool.
func (a Allocator[T]) Equal(b Allocator[T]) bool {
	return samePool(a.pool, b.pool)
}

// Compatible is Equal across element types.
func Compatible[T, U any](a Allocator[T], b Allocator[U]) bool {
	return samePool(a.pool, b.pool)
}

// samePool compares two pool references where nil stands for Default. A nil
// side only matches a bound side if the Default pool already exists.
func samePool(x, y *Pool) bool {
	if x == y {
		return true
	}
	if x == nil {
		x = defaultPool.Load()
	}
	if y == nil {
		y = defaultPool.Load()
	}
	return x != nil && x == y
}

// Allocate returns a zeroed slice of n elements. Pool failures are absorbed:
// the slice then comes from the heap. Returns nil if n <= 0.
func (a Allocator[T]) Allocate(n int) []T {
	if n <= 0 {
		return nil
	}
	p := a.Pool()
	var zero T
	size := int(unsafe.Sizeof(zero))
	switch {
	case size == 0 || !poolable[T]() || unsafe.Alignof(zero) > p.align:
		return a.fallback(p, n, "type not poolable")
	case n > maxInt/size:
		return a.fallback(p, n, "size overflows")
	}

	b, err := p.Reserve(n * size)
	if err != nil {
		if !IsRecoverable(err) {
			level.Warn(p.logger).Log("msg", "unexpected reservation error", "err", err)
		}
		return a.fallback(p, n, err.Error())
	}
	clear(b)
	level.Debug(p.logger).Log("msg", "allocated from pool", "bytes", n*size)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

func (a Allocator[T]) fallback(p *Pool, n int, reason string) []T {
	p.recordFallback()
	level.Debug(p.logger).Log("msg", "allocated from heap", "elems", n, "type", reflect.TypeFor[T](), "reason", reason)
	return make([]T, n)
}

// Deallocate returns s, obtained from Allocate(n), to where it came from. A
// slice inside the pool buffer is released to the pool; anything else is left
// to the garbage collector. An error means the pool has no entry for s, which
// is a double free or a corrupted table, and must not be ignored.
func (a Allocator[T]) Deallocate(s []T, n int) error {
	if cap(s) == 0 {
		return nil
	}
	p := a.Pool()
	ptr := unsafe.Pointer(unsafe.SliceData(s))
	if !p.Owns(ptr) {
		level.Debug(p.logger).Log("msg", "deallocated from heap", "elems", n, "type", reflect.TypeFor[T]())
		return nil
	}
	if err := p.Release(uintptr(ptr)); err != nil {
		return errors.Wrapf(err, "deallocate %d x %s", n, reflect.TypeFor[T]())
	}
	level.Debug(p.logger).Log("msg", "deallocated from pool", "elems", n, "type", reflect.TypeFor[T]())
	return nil
}

const maxInt = int(^uint(0) >> 1)

// The pool buffer is a []byte the garbage collector does not scan, so only
// types without pointers may live in it.
var poolableTypes sync.Map // reflect.Type -> bool

func poolable[T any]() bool {
	t := reflect.TypeFor[T]()
	if v, ok := poolableTypes.Load(t); ok {
		return v.(bool)
	}
	ok := !hasPointers(t)
	poolableTypes.Store(t, ok)
	return ok
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
