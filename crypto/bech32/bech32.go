package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Decode converts given bech32 encoded representation into raw payload and a
// human readable part.
func Decode(raw string) (string, []byte, error) {
	hrp, payload, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	payload, err = bech32.ConvertBits(payload, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return hrp, payload, nil
}

// Encode converts given bytes into bech32 encoded representation.
func Encode(hrp string, payload []byte) ([]byte, error) {
	payload, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	raw, err := bech32.Encode(hrp, payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return []byte(raw), nil
}

// EncodeAddress returns the bech32 representation of an address.
func EncodeAddress(hrp string, a custody.Address) (string, error) {
	raw, err := Encode(hrp, a[:])
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeAddress parses a bech32 encoded address.
func DecodeAddress(raw string) (string, custody.Address, error) {
	hrp, payload, err := Decode(raw)
	if err != nil {
		return "", custody.Address{}, err
	}
	a, err := custody.AddressFromBytes(payload)
	return hrp, a, err
}
