/*
Package crypto implements the ed25519 keys used to sign custody
transactions. The public half of a key is used directly as the signer
address.
*/
package crypto

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"golang.org/x/crypto/ed25519"
)

// Signer is implemented by any private key that can produce signatures for
// a custody address.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() custody.Address
}

// PrivateKey is an ed25519 private key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// PrivKeyEd25519FromBytes loads a private key from its raw 64 bytes
// representation, as returned by Bytes.
func PrivKeyEd25519FromBytes(raw []byte) (*PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key must be %d bytes", ed25519.PrivateKeySize)
	}
	key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(key, raw)
	return &PrivateKey{key: key}, nil
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(p.key, message), nil
}

// PublicKey returns the address of this key.
func (p *PrivateKey) PublicKey() custody.Address {
	pub := p.key.Public().(ed25519.PublicKey)
	var a custody.Address
	copy(a[:], pub)
	return a
}

// Bytes returns the raw private key. Keep it secret.
func (p *PrivateKey) Bytes() []byte {
	out := make([]byte, len(p.key))
	copy(out, p.key)
	return out
}

// Verify returns true if sig is a valid signature of message created by the
// owner of given address.
func Verify(signer custody.Address, message, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(signer[:]), message, sig)
}
