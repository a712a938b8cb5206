package sigs

import "github.com/iov-one/custody/errors"

// ErrInvalidSequence is returned when a signature was created for another
// sequence than the one the signer account expects.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
