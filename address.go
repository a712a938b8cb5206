package custody

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/custody/errors"
	"github.com/minio/sha256-simd"
)

// AddressLength is the length of all addresses.
const AddressLength = 32

// Address identifies an account. An ed25519 public key is used directly as
// the address of its owner. Addresses that are not owned by a key, such as
// balance accounts or operations, are derived with NewDerivedAddress.
type Address [AddressLength]byte

// NewDerivedAddress returns an address that is the SHA-256 digest of all
// given seeds concatenated. No private key exists for such an address.
func NewDerivedAddress(seeds ...[]byte) Address {
	h := sha256.New()
	for _, s := range seeds {
		_, _ = h.Write(s)
	}
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// AddressFromBytes returns an address from a raw byte representation.
func AddressFromBytes(raw []byte) (Address, error) {
	var a Address
	if len(raw) != AddressLength {
		return a, errors.Wrapf(errors.ErrInput, "address must be %d bytes, got %d", AddressLength, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// ParseAddress decodes a hex encoded address.
func ParseAddress(s string) (Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, errors.Wrap(errors.ErrInput, "hex")
	}
	return AddressFromBytes(raw)
}

// IsZero returns true for the zero address. The zero address marks an unset
// key and can never be a signer.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Validate returns an error if the address is not set.
func (a Address) Validate() error {
	if a.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "address")
	}
	return nil
}

// String returns a human readable string.
func (a Address) String() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// MarshalJSON provides a hex representation for JSON,
// to override the standard byte array encoding
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses JSON in hex representation,
// to override the standard byte array encoding
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "address must be a hex string")
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
