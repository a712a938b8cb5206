package slots

import (
	"github.com/iov-one/custody/errors"
)

// Codec serializes values of type T into a fixed number of bytes.
type Codec[T comparable] interface {
	// Size returns the number of bytes of a serialized value.
	Size() int
	// Put writes v into dst, which is exactly Size bytes long.
	Put(dst []byte, v T)
	// Read decodes a value from src, which is exactly Size bytes long.
	Read(src []byte) (T, error)
}

// EncodedLen returns the size of a serialized store of given capacity. Each
// slot takes one occupied flag byte followed by the value bytes.
func EncodedLen[T comparable](capacity int, c Codec[T]) int {
	return capacity * (1 + c.Size())
}

// MarshalTo writes the store into dst, which must be exactly EncodedLen
// bytes long. Empty slots are written as zeros.
func (s Slots[T]) MarshalTo(dst []byte, c Codec[T]) {
	size := 1 + c.Size()
	if len(dst) != len(s.values)*size {
		panic("invalid destination size")
	}
	for i := range s.values {
		chunk := dst[i*size : (i+1)*size]
		if !s.used[i] {
			for j := range chunk {
				chunk[j] = 0
			}
			continue
		}
		chunk[0] = 1
		c.Put(chunk[1:], s.values[i])
	}
}

// Unmarshal decodes a store of given capacity serialized with MarshalTo.
func Unmarshal[T comparable](src []byte, capacity int, c Codec[T]) (Slots[T], error) {
	s := New[T](capacity)
	size := 1 + c.Size()
	if len(src) != capacity*size {
		return s, errors.Wrapf(errors.ErrMalformedRecord, "slots: want %d bytes, got %d", capacity*size, len(src))
	}
	for i := 0; i < capacity; i++ {
		chunk := src[i*size : (i+1)*size]
		switch chunk[0] {
		case 0:
			if !isZero(chunk[1:]) {
				return s, errors.Wrapf(errors.ErrMalformedRecord, "slot %d: empty slot with payload", i)
			}
		case 1:
			v, err := c.Read(chunk[1:])
			if err != nil {
				return s, errors.Wrapf(err, "slot %d", i)
			}
			s.values[i] = v
			s.used[i] = true
		default:
			return s, errors.Wrapf(errors.ErrMalformedRecord, "slot %d: invalid occupied flag %d", i, chunk[0])
		}
	}
	return s, nil
}

// FlagsFromBytes decodes a set of given capacity serialized with Bytes.
// Bits beyond the capacity must be cleared.
func FlagsFromBytes[T comparable](capacity int, raw []byte) (Flags[T], error) {
	f := NewFlags[T](capacity)
	if len(raw) != len(f.bits) {
		return f, errors.Wrapf(errors.ErrMalformedRecord, "flags: want %d bytes, got %d", len(f.bits), len(raw))
	}
	if rem := capacity % 8; rem != 0 {
		if raw[len(raw)-1]>>rem != 0 {
			return f, errors.Wrap(errors.ErrMalformedRecord, "flags: bit set beyond capacity")
		}
	}
	copy(f.bits, raw)
	return f, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
