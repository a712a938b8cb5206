package multisig

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	recordLen = custody.AddressLength + 1

	// OperationLen is the size of a serialized operation:
	// initialized 1 | record count 1 | records 24*(32+1) | required 1 |
	// disposition 1 | params hash 32 | started at 8 | expires at 8
	OperationLen = 1 + 1 + MaxApprovers*recordLen + 1 + 1 + 32 + 8 + 8
)

// MarshalBinary implements encoding.BinaryMarshaler. Unused record slots are
// zero filled.
func (o *Operation) MarshalBinary() ([]byte, error) {
	if len(o.DispositionRecords) > MaxApprovers {
		return nil, errors.Wrapf(errors.ErrInput, "at most %d approvers allowed", MaxApprovers)
	}
	out := make([]byte, OperationLen)
	if o.IsInitialized {
		out[0] = 1
	}
	out[1] = uint8(len(o.DispositionRecords))
	p := 2
	for _, r := range o.DispositionRecords {
		copy(out[p:], r.Approver[:])
		out[p+custody.AddressLength] = uint8(r.Disposition)
		p += recordLen
	}
	p = 2 + MaxApprovers*recordLen
	out[p] = o.DispositionsRequired
	out[p+1] = uint8(o.OperationDisposition)
	p += 2
	copy(out[p:], o.ParamsHash[:])
	p += len(o.ParamsHash)
	binary.LittleEndian.PutUint64(out[p:], uint64(o.StartedAt))
	binary.LittleEndian.PutUint64(out[p+8:], uint64(o.ExpiresAt))
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Every byte is
// checked so that a decoded operation always serializes back to the same
// bytes.
func (o *Operation) UnmarshalBinary(raw []byte) error {
	if len(raw) != OperationLen {
		return errors.Wrapf(errors.ErrMalformedRecord, "operation: want %d bytes, got %d", OperationLen, len(raw))
	}
	var op Operation
	switch raw[0] {
	case 0:
	case 1:
		op.IsInitialized = true
	default:
		return errors.Wrap(errors.ErrMalformedRecord, "operation: initialized flag")
	}

	count := int(raw[1])
	if count > MaxApprovers {
		return errors.Wrapf(errors.ErrMalformedRecord, "operation: %d records", count)
	}
	if count > 0 {
		op.DispositionRecords = make([]DispositionRecord, count)
	}
	p := 2
	for i := 0; i < MaxApprovers; i++ {
		chunk := raw[p : p+recordLen]
		p += recordLen
		if i >= count {
			if !isZero(chunk) {
				return errors.Wrapf(errors.ErrMalformedRecord, "operation: record %d beyond count", i)
			}
			continue
		}
		d := ApprovalDisposition(chunk[custody.AddressLength])
		if d > DispositionDeny {
			return errors.Wrapf(errors.ErrMalformedRecord, "operation: record %d disposition %d", i, d)
		}
		copy(op.DispositionRecords[i].Approver[:], chunk)
		op.DispositionRecords[i].Disposition = d
	}

	op.DispositionsRequired = raw[p]
	op.OperationDisposition = OperationDisposition(raw[p+1])
	if op.OperationDisposition > OperationDenied {
		return errors.Wrapf(errors.ErrMalformedRecord, "operation: disposition %d", op.OperationDisposition)
	}
	p += 2
	copy(op.ParamsHash[:], raw[p:p+32])
	p += 32
	op.StartedAt = custody.UnixTime(int64(binary.LittleEndian.Uint64(raw[p:])))
	op.ExpiresAt = custody.UnixTime(int64(binary.LittleEndian.Uint64(raw[p+8:])))

	*o = op
	return nil
}

// Marshal serializes the operation for the store.
func (o *Operation) Marshal() ([]byte, error) {
	return o.MarshalBinary()
}

// Unmarshal loads an operation serialized with Marshal.
func (o *Operation) Unmarshal(raw []byte) error {
	return o.UnmarshalBinary(raw)
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
