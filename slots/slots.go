package slots

import (
	"github.com/iov-one/custody/errors"
)

// ID is the index of a slot holding a value of type T.
type ID[T any] uint8

// Slot is a single (id, value) pair of a batch.
type Slot[T comparable] struct {
	ID    ID[T] `json:"id"`
	Value T     `json:"value"`
}

// IDs returns the ids of all slots of the batch, in the batch order.
func IDs[T comparable](batch []Slot[T]) []ID[T] {
	ids := make([]ID[T], len(batch))
	for i, s := range batch {
		ids[i] = s.ID
	}
	return ids
}

// Slots is an array of capacity optional values of type T.
type Slots[T comparable] struct {
	values []T
	used   []bool
}

// New returns an empty store of given capacity.
func New[T comparable](capacity int) Slots[T] {
	if capacity <= 0 || capacity > 256 {
		panic("slot capacity must be within 1..256")
	}
	return Slots[T]{
		values: make([]T, capacity),
		used:   make([]bool, capacity),
	}
}

// Capacity returns the number of slots.
func (s Slots[T]) Capacity() int {
	return len(s.values)
}

// Count returns the number of occupied slots.
func (s Slots[T]) Count() int {
	var n int
	for _, u := range s.used {
		if u {
			n++
		}
	}
	return n
}

// Get returns the value stored under given id. The second value is false
// if the id is out of range or the slot is empty.
func (s Slots[T]) Get(id ID[T]) (T, bool) {
	var zero T
	if int(id) >= len(s.values) || !s.used[id] {
		return zero, false
	}
	return s.values[id], true
}

// FindID returns the id of the first slot holding given value.
func (s Slots[T]) FindID(value T) (ID[T], bool) {
	for i, u := range s.used {
		if u && s.values[i] == value {
			return ID[T](i), true
		}
	}
	return 0, false
}

// Each calls fn for every occupied slot, in id order.
func (s Slots[T]) Each(fn func(ID[T], T)) {
	for i, u := range s.used {
		if u {
			fn(ID[T](i), s.values[i])
		}
	}
}

// CanInsert returns an error unless every slot of the batch is within range,
// empty and addressed only once.
func (s Slots[T]) CanInsert(batch []Slot[T]) error {
	seen := make(map[ID[T]]struct{}, len(batch))
	for _, b := range batch {
		if int(b.ID) >= len(s.values) {
			return errors.Wrapf(errors.ErrSlotCollision, "slot %d out of range", b.ID)
		}
		if s.used[b.ID] {
			return errors.Wrapf(errors.ErrSlotCollision, "slot %d already taken", b.ID)
		}
		if _, ok := seen[b.ID]; ok {
			return errors.Wrapf(errors.ErrSlotCollision, "slot %d used twice", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// InsertMany stores all values of the batch. Nothing is written unless the
// whole batch can be inserted.
func (s Slots[T]) InsertMany(batch []Slot[T]) error {
	if err := s.CanInsert(batch); err != nil {
		return err
	}
	for _, b := range batch {
		s.values[b.ID] = b.Value
		s.used[b.ID] = true
	}
	return nil
}

// CanRemove returns an error unless every slot of the batch holds exactly
// the value supplied with it.
func (s Slots[T]) CanRemove(batch []Slot[T]) error {
	seen := make(map[ID[T]]struct{}, len(batch))
	for _, b := range batch {
		if v, ok := s.Get(b.ID); !ok || v != b.Value {
			return errors.Wrapf(errors.ErrSlotMismatch, "slot %d does not hold the expected value", b.ID)
		}
		if _, ok := seen[b.ID]; ok {
			return errors.Wrapf(errors.ErrSlotMismatch, "slot %d used twice", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// RemoveMany empties all slots of the batch. Nothing is written unless the
// whole batch can be removed.
func (s Slots[T]) RemoveMany(batch []Slot[T]) error {
	if err := s.CanRemove(batch); err != nil {
		return err
	}
	var zero T
	for _, b := range batch {
		s.values[b.ID] = zero
		s.used[b.ID] = false
	}
	return nil
}

// Contains returns true if every slot of the batch holds the value supplied
// with it.
func (s Slots[T]) Contains(batch []Slot[T]) bool {
	for _, b := range batch {
		if v, ok := s.Get(b.ID); !ok || v != b.Value {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (s Slots[T]) Clone() Slots[T] {
	c := Slots[T]{
		values: make([]T, len(s.values)),
		used:   make([]bool, len(s.used)),
	}
	copy(c.values, s.values)
	copy(c.used, s.used)
	return c
}
