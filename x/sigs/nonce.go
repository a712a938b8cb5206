package sigs

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// NextNonce returns the next numeric nonce value that should be used during a
// transaction signing.
// You can get the signers address by calling
//   address := <crypto.Signer>.PublicKey()
func NextNonce(db custody.ReadOnlyKVStore, signer custody.Address) (int64, error) {
	u, err := NewBucket().GetUser(db, signer)
	switch {
	case err == nil:
		return u.Sequence, nil
	case errors.ErrNotFound.Is(err):
		// If not yet present, nonce counting starts with zero.
		return 0, nil
	default:
		return 0, errors.Wrap(err, "bucket get")
	}
}
