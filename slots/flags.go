package slots

import (
	"math/bits"
)

// Flags is a bitset with one bit per slot of a Slots[T] of the same
// capacity.
type Flags[T comparable] struct {
	capacity int
	bits     []byte
}

// NewFlags returns a set of given capacity with every bit cleared.
func NewFlags[T comparable](capacity int) Flags[T] {
	if capacity <= 0 || capacity > 256 {
		panic("flag capacity must be within 1..256")
	}
	return Flags[T]{
		capacity: capacity,
		bits:     make([]byte, FlagsLen(capacity)),
	}
}

// FlagsLen returns the number of bytes needed to store flags for given
// capacity.
func FlagsLen(capacity int) int {
	return (capacity + 7) / 8
}

// Capacity returns the number of bits of this set.
func (f Flags[T]) Capacity() int {
	return f.capacity
}

// EnableMany sets the bits of all given ids. Ids out of range are ignored.
// It is up to the caller to check that the underlying slots are occupied.
func (f Flags[T]) EnableMany(ids []ID[T]) {
	for _, id := range ids {
		if int(id) < f.capacity {
			f.bits[id/8] |= 1 << (id % 8)
		}
	}
}

// Disable clears the bit of given id. The underlying slot may already be
// empty.
func (f Flags[T]) Disable(id ID[T]) {
	if int(id) < f.capacity {
		f.bits[id/8] &^= 1 << (id % 8)
	}
}

// IsEnabled returns true if the bit of given id is set.
func (f Flags[T]) IsEnabled(id ID[T]) bool {
	if int(id) >= f.capacity {
		return false
	}
	return f.bits[id/8]&(1<<(id%8)) != 0
}

// AnyEnabled returns true if at least one of given ids is enabled.
func (f Flags[T]) AnyEnabled(ids []ID[T]) bool {
	for _, id := range ids {
		if f.IsEnabled(id) {
			return true
		}
	}
	return false
}

// CountEnabled returns the number of set bits.
func (f Flags[T]) CountEnabled() int {
	var n int
	for _, b := range f.bits {
		n += bits.OnesCount8(b)
	}
	return n
}

// IterEnabled returns all enabled ids in ascending order.
func (f Flags[T]) IterEnabled() []ID[T] {
	ids := make([]ID[T], 0, f.CountEnabled())
	for i := 0; i < f.capacity; i++ {
		if f.IsEnabled(ID[T](i)) {
			ids = append(ids, ID[T](i))
		}
	}
	return ids
}

// Bytes returns the serialized form of this set. Bit i is stored in byte
// i/8 at position i%8.
func (f Flags[T]) Bytes() []byte {
	out := make([]byte, len(f.bits))
	copy(out, f.bits)
	return out
}

// Clone returns a deep copy.
func (f Flags[T]) Clone() Flags[T] {
	return Flags[T]{capacity: f.capacity, bits: f.Bytes()}
}
