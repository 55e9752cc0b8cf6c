package mempool

// Entry describes one live reservation in a pool. A zero Address marks a
// free slot, in which case Size is zero as well.
type Entry struct {
	Address uintptr
	Size    int
}

// Free reports whether the slot holds no reservation.
func (e Entry) Free() bool {
	return e.Address == 0
}

// End returns the address one past the last byte of the reservation.
func (e Entry) End() uintptr {
	return e.Address + uintptr(e.Size)
}

// Contains reports whether addr falls inside [Address, End).
func (e Entry) Contains(addr uintptr) bool {
	return !e.Free() && addr >= e.Address && addr < e.End()
}

// Overlaps reports whether the reservation intersects [start, end).
func (e Entry) Overlaps(start, end uintptr) bool {
	return !e.Free() && start < e.End() && end > e.Address
}
