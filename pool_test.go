package mempool

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
)

func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		capacity   int
		maxEntries int
		opts       []Option
		wantErr    bool
	}{
		{"valid", 1024, 8, nil, false},
		{"zero capacity", 0, 8, nil, true},
		{"negative capacity", -1, 8, nil, true},
		{"zero entries", 1024, 0, nil, true},
		{"custom alignment", 1024, 8, []Option{WithAlignment(64)}, false},
		{"byte alignment", 1024, 8, []Option{WithAlignment(1)}, false},
		{"alignment not a power of two", 1024, 8, []Option{WithAlignment(12)}, true},
		{"zero alignment", 1024, 8, []Option{WithAlignment(0)}, true},
		{"nil logger", 1024, 8, []Option{WithLogger(nil)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.capacity, tt.maxEntries, tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("New(%d, %d) error = %v, want ErrInvalidConfig", tt.capacity, tt.maxEntries, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%d, %d) error = %v", tt.capacity, tt.maxEntries, err)
			}
			if p.Capacity() != tt.capacity {
				t.Errorf("Capacity() = %d, want %d", p.Capacity(), tt.capacity)
			}
			if p.MaxEntries() != tt.maxEntries {
				t.Errorf("MaxEntries() = %d, want %d", p.MaxEntries(), tt.maxEntries)
			}
			start, end := p.Bounds()
			if end-start != uintptr(tt.capacity) {
				t.Errorf("Bounds() span = %d, want %d", end-start, tt.capacity)
			}
			if start%p.align != 0 {
				t.Errorf("buffer start %#x not aligned to %d", start, p.align)
			}
		})
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Must(0, 0) did not panic")
		}
	}()
	Must(0, 0)
}

func TestPoolReserve(t *testing.T) {
	p := Must(1024, 8)
	start, end := p.Bounds()

	b1, err := p.Reserve(100)
	if err != nil {
		t.Fatalf("Reserve(100) error = %v", err)
	}
	if len(b1) != 100 || cap(b1) != 100 {
		t.Errorf("Reserve(100) len/cap = %d/%d, want 100/100", len(b1), cap(b1))
	}
	if addrOf(b1) != start {
		t.Errorf("first reservation at %#x, want buffer start %#x", addrOf(b1), start)
	}

	b2, err := p.Reserve(10)
	if err != nil {
		t.Fatalf("Reserve(10) error = %v", err)
	}
	if got, want := addrOf(b2), start+104; got != want {
		t.Errorf("second reservation at %#x, want %#x", got, want)
	}
	if !p.Owns(unsafe.Pointer(&b2[9])) || p.OwnsAddress(end) {
		t.Error("Owns() disagrees with Bounds()")
	}

	// Writes through one reservation never show up in another.
	for i := range b1 {
		b1[i] = 0xAA
	}
	for i := range b2 {
		if b2[i] != 0 {
			t.Fatalf("b2[%d] = %#x, reservations overlap", i, b2[i])
		}
	}

	for _, n := range []int{0, -5} {
		if _, err := p.Reserve(n); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Reserve(%d) error = %v, want ErrInvalidLength", n, err)
		}
	}
	if p.LiveEntries() != 2 || p.BytesInUse() != 110 {
		t.Errorf("live/bytes = %d/%d, want 2/110", p.LiveEntries(), p.BytesInUse())
	}
}

func TestPoolRelease(t *testing.T) {
	p := Must(1024, 8)

	b, _ := p.Reserve(64)
	if err := p.ReleaseBytes(b); err != nil {
		t.Fatalf("ReleaseBytes() error = %v", err)
	}
	if p.LiveEntries() != 0 {
		t.Errorf("LiveEntries() = %d after release, want 0", p.LiveEntries())
	}

	if err := p.ReleaseBytes(b); !errors.Is(err, ErrAddressNotFound) {
		t.Errorf("second ReleaseBytes() error = %v, want ErrAddressNotFound", err)
	}
	if err := p.ReleaseBytes(nil); !errors.Is(err, ErrAddressNotFound) {
		t.Errorf("ReleaseBytes(nil) error = %v, want ErrAddressNotFound", err)
	}

	// A pointer into the middle of a reservation is not its address.
	b, _ = p.Reserve(64)
	if err := p.Release(addrOf(b) + 8); !errors.Is(err, ErrAddressNotFound) {
		t.Errorf("Release(interior) error = %v, want ErrAddressNotFound", err)
	}
	if p.LiveEntries() != 1 {
		t.Errorf("LiveEntries() = %d after failed release, want 1", p.LiveEntries())
	}
}

func TestPoolClear(t *testing.T) {
	p := Must(1024, 4)
	for i := 0; i < 4; i++ {
		if _, err := p.Reserve(100); err != nil {
			t.Fatalf("Reserve(100) #%d error = %v", i, err)
		}
	}
	if _, err := p.Reserve(1); !errors.Is(err, ErrTableFull) {
		t.Fatalf("Reserve on full table error = %v, want ErrTableFull", err)
	}

	p.Clear()
	if p.LiveEntries() != 0 || p.BytesInUse() != 0 {
		t.Errorf("after Clear live/bytes = %d/%d, want 0/0", p.LiveEntries(), p.BytesInUse())
	}
	b, err := p.Reserve(1024)
	if err != nil {
		t.Fatalf("Reserve(capacity) after Clear error = %v", err)
	}
	if start, _ := p.Bounds(); addrOf(b) != start {
		t.Errorf("reservation after Clear at %#x, want %#x", addrOf(b), start)
	}
}

func TestPoolEntries(t *testing.T) {
	p := Must(1024, 8, WithAlignment(1))
	start, _ := p.Bounds()

	a, _ := p.Reserve(10)
	p.Reserve(20)
	p.Reserve(30)
	p.ReleaseBytes(a)
	p.Reserve(5) // lands in the gap at the front, in a recycled slot

	got := p.Entries()
	want := []Entry{
		{Address: start, Size: 5},
		{Address: start + 10, Size: 20},
		{Address: start + 30, Size: 30},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestEntry(t *testing.T) {
	e := Entry{Address: 100, Size: 10}
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"free", e.Free(), false},
		{"zero entry free", Entry{}.Free(), true},
		{"contains start", e.Contains(100), true},
		{"contains last", e.Contains(109), true},
		{"contains end", e.Contains(110), false},
		{"overlaps inside", e.Overlaps(105, 120), true},
		{"overlaps adjacent after", e.Overlaps(110, 120), false},
		{"overlaps adjacent before", e.Overlaps(90, 100), false},
		{"free overlaps nothing", Entry{}.Overlaps(0, 1000), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if e.End() != 110 {
		t.Errorf("End() = %d, want 110", e.End())
	}
}

func BenchmarkPoolReserveRelease(b *testing.B) {
	sizes := []int{8, 64, 256, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size-%d", size), func(b *testing.B) {
			p := Must(1<<20, 1024)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf, err := p.Reserve(size)
				if err != nil {
					b.Fatal(err)
				}
				if err := p.ReleaseBytes(buf); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
