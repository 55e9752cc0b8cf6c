package mempool

import "github.com/pkg/errors"

var (
	// ErrOutOfSpace is returned by Reserve when no contiguous free region of
	// the requested length exists in the pool buffer.
	ErrOutOfSpace = errors.New("mempool: no contiguous free region large enough")

	// ErrTableFull is returned by Reserve when every entry slot is live, no
	// matter how many bytes remain free.
	ErrTableFull = errors.New("mempool: entry table full")

	// ErrAddressNotFound is returned by Release when the address matches no
	// live entry. It means a double release or a foreign pointer and is never
	// absorbed by the allocator.
	ErrAddressNotFound = errors.New("mempool: address not found")

	ErrInvalidLength = errors.New("mempool: length must be positive")
	ErrInvalidConfig = errors.New("mempool: invalid configuration")
	ErrNilPool       = errors.New("mempool: nil pool")
	ErrAlreadyBound  = errors.New("mempool: allocator already bound to another pool")
	ErrDefaultInUse  = errors.New("mempool: default pool already initialized")
)

// IsRecoverable reports whether err is a reservation failure that an
// allocator may absorb by falling back to the heap.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrOutOfSpace) || errors.Is(err, ErrTableFull)
}
