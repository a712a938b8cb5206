package custodytest

import (
	"context"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

// NewKey returns a new random signing key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewAddress returns the address of a new random key.
func NewAddress() custody.Address {
	return NewKey().PublicKey()
}

// SequenceAddress returns a deterministic address that is not a key. Use it
// for fixtures that need readable, distinct values.
func SequenceAddress(n byte) custody.Address {
	var a custody.Address
	for i := range a {
		a[i] = n
	}
	return a
}

// Context returns a background context with the block time set.
func Context(now time.Time) custody.Context {
	return custody.WithBlockTime(context.Background(), now)
}
