package container

import (
	"github.com/pavanmanishd/mempool"
)

// String is a mutable byte string backed by an allocator. Not goroutine-safe.
type String struct {
	v Vector[byte]
}

// NewString returns an empty string that allocates through alloc.
func NewString(alloc mempool.Allocator[byte]) *String {
	return &String{v: Vector[byte]{alloc: alloc}}
}

// Allocator returns the allocator the string uses.
func (s *String) Allocator() mempool.Allocator[byte] {
	return s.v.alloc
}

// Assign replaces the contents with x.
func (s *String) Assign(x string) {
	s.v.n = 0
	s.Append(x)
}

// Append adds x at the end.
func (s *String) Append(x string) {
	if need := s.v.n + len(x); need > len(s.v.data) {
		s.v.grow(need)
	}
	copy(s.v.data[s.v.n:], x)
	s.v.n += len(x)
}

// AppendByte adds c at the end.
func (s *String) AppendByte(c byte) {
	s.v.Append(c)
}

// Len returns the length in bytes.
func (s *String) Len() int { return s.v.n }

// Cap returns the number of bytes the storage holds without growing.
func (s *String) Cap() int { return s.v.Cap() }

// Bytes returns the contents without copying. Valid until the next call that
// grows or frees the string.
func (s *String) Bytes() []byte {
	return s.v.Slice()
}

// String returns a copy of the contents.
func (s *String) String() string {
	return string(s.v.Slice())
}

// Free hands the storage back to the allocator and empties the string.
func (s *String) Free() error {
	return s.v.Free()
}
