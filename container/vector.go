// Package container provides growable containers whose storage comes from a
// mempool.Allocator.
package container

import (
	"fmt"

	"github.com/pavanmanishd/mempool"
)

const minCapacity = 4

// Vector is a dynamic array backed by an allocator. Not goroutine-safe.
type Vector[T any] struct {
	alloc mempool.Allocator[T]
	data  []T // len(data) is the capacity
	n     int
}

// NewVector returns an empty vector that allocates through alloc.
func NewVector[T any](alloc mempool.Allocator[T]) *Vector[T] {
	return &Vector[T]{alloc: alloc}
}

// Allocator returns the allocator the vector uses.
func (v *Vector[T]) Allocator() mempool.Allocator[T] {
	return v.alloc
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.n }

// Cap returns the number of elements the storage holds without growing.
func (v *Vector[T]) Cap() int { return len(v.data) }

// At returns the i-th element. Panics if i is out of range.
func (v *Vector[T]) At(i int) T {
	v.check(i)
	return v.data[i]
}

// Set overwrites the i-th element. Panics if i is out of range.
func (v *Vector[T]) Set(i int, x T) {
	v.check(i)
	v.data[i] = x
}

// Slice returns the elements in use. The slice is only valid until the next
// call that grows or frees the vector.
func (v *Vector[T]) Slice() []T {
	return v.data[:v.n]
}

// Append adds xs at the end, growing the storage as needed.
func (v *Vector[T]) Append(xs ...T) {
	if need := v.n + len(xs); need > len(v.data) {
		v.grow(need)
	}
	copy(v.data[v.n:], xs)
	v.n += len(xs)
}

// Reserve makes room for at least n elements.
func (v *Vector[T]) Reserve(n int) {
	if n > len(v.data) {
		v.resize(n)
	}
}

// Clear drops the elements but keeps the storage.
func (v *Vector[T]) Clear() {
	clear(v.data[:v.n])
	v.n = 0
}

// Free hands the storage back to the allocator and empties the vector.
func (v *Vector[T]) Free() error {
	old := v.data
	v.data, v.n = nil, 0
	return v.alloc.Deallocate(old, len(old))
}

func (v *Vector[T]) grow(need int) {
	c := max(len(v.data)*2, minCapacity)
	for c < need {
		c *= 2
	}
	v.resize(c)
}

// resize moves the elements to fresh storage of capacity c. A failure to
// give back the old storage means the pool table no longer matches what was
// handed out, and there is no safe way to continue.
func (v *Vector[T]) resize(c int) {
	data := v.alloc.Allocate(c)
	copy(data, v.data[:v.n])
	old := v.data
	v.data = data
	if err := v.alloc.Deallocate(old, len(old)); err != nil {
		panic(err)
	}
}

func (v *Vector[T]) check(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("container: index %d out of range [0:%d]", i, v.n))
	}
}
