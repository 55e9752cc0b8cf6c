package mempool

import (
	"github.com/google/btree"
	"github.com/pkg/errors"
)

// span is a live entry as stored in the address index.
type span struct {
	addr uintptr
	size int
	slot int
}

func (s span) end() uintptr {
	return s.addr + uintptr(s.size)
}

// slotTable tracks reservations over a fixed address range. Not goroutine-safe;
// Pool serializes access to it.
//
// entries is the fixed slot table in storage order. byAddr indexes the live
// slots by address so placement always sees them in address order, whatever
// order they were reserved and released in. free is a LIFO stack of unused
// slot indices.
type slotTable struct {
	start uintptr
	end   uintptr
	align uintptr

	entries []Entry
	free    []int
	byAddr  *btree.BTreeG[span]
	inUse   int
}

func newSlotTable(start, end uintptr, maxEntries int, align uintptr) *slotTable {
	t := &slotTable{
		start:   start,
		end:     end,
		align:   align,
		entries: make([]Entry, maxEntries),
		free:    make([]int, 0, maxEntries),
		byAddr: btree.NewG(16, func(a, b span) bool {
			return a.addr < b.addr
		}),
	}
	t.resetFreeList()
	return t
}

// resetFreeList pushes slots so that slot 0 is handed out first.
func (t *slotTable) resetFreeList() {
	t.free = t.free[:0]
	for i := len(t.entries) - 1; i >= 0; i-- {
		t.free = append(t.free, i)
	}
}

// place finds the lowest aligned address where length bytes fit between live
// entries.
func (t *slotTable) place(length int) (uintptr, error) {
	if uintptr(length) > t.end-t.start {
		return 0, ErrOutOfSpace
	}
	n := uintptr(length)
	candidate := alignUp(t.start, t.align)
	t.byAddr.Ascend(func(s span) bool {
		if candidate+n <= s.addr {
			return false
		}
		if e := s.end(); e > candidate {
			candidate = alignUp(e, t.align)
		}
		return true
	})
	if candidate > t.end || t.end-candidate < n {
		return 0, ErrOutOfSpace
	}
	return candidate, nil
}

func (t *slotTable) reserve(length int) (uintptr, error) {
	if length <= 0 {
		return 0, errors.Wrapf(ErrInvalidLength, "reserve %d bytes", length)
	}
	if len(t.free) == 0 {
		return 0, errors.Wrapf(ErrTableFull, "reserve %d bytes: all %d slots live", length, len(t.entries))
	}
	addr, err := t.place(length)
	if err != nil {
		return 0, errors.Wrapf(err, "reserve %d bytes", length)
	}

	slot := t.free[len(t.free)-1]
	t.free = t.free[:len(t.free)-1]
	t.entries[slot] = Entry{Address: addr, Size: length}
	t.byAddr.ReplaceOrInsert(span{addr: addr, size: length, slot: slot})
	t.inUse += length
	return addr, nil
}

func (t *slotTable) release(addr uintptr) error {
	s, ok := t.byAddr.Get(span{addr: addr})
	if !ok {
		return errors.Wrapf(ErrAddressNotFound, "release %#x", addr)
	}
	t.byAddr.Delete(s)
	t.entries[s.slot] = Entry{}
	t.free = append(t.free, s.slot)
	t.inUse -= s.size
	return nil
}

func (t *slotTable) clear() {
	clear(t.entries)
	t.byAddr.Clear(false)
	t.resetFreeList()
	t.inUse = 0
}

func (t *slotTable) live() int {
	return t.byAddr.Len()
}

// snapshot returns the live entries in address order.
func (t *slotTable) snapshot() []Entry {
	out := make([]Entry, 0, t.byAddr.Len())
	t.byAddr.Ascend(func(s span) bool {
		out = append(out, Entry{Address: s.addr, Size: s.size})
		return true
	})
	return out
}

// largestGap returns the largest run of bytes, starting at an aligned
// address, that a single reservation could still get.
func (t *slotTable) largestGap() int {
	largest := uintptr(0)
	cursor := t.start
	measure := func(limit uintptr) {
		a := alignUp(cursor, t.align)
		if a < limit && limit-a > largest {
			largest = limit - a
		}
	}
	t.byAddr.Ascend(func(s span) bool {
		measure(s.addr)
		if e := s.end(); e > cursor {
			cursor = e
		}
		return true
	})
	measure(t.end)
	return int(largest)
}

func alignUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}
