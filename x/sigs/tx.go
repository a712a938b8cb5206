package sigs

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	custody.Tx

	// GetSignBytes returns the canonical byte representation of the Msg.
	// It must not include the signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is an ed25519 signature of a transaction together with the
// sequence it was created for.
type StdSignature struct {
	Pubkey    custody.Address `json:"pubkey"`
	Signature []byte          `json:"signature"`
	Sequence  int64           `json:"sequence"`
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey.IsZero() {
		return errors.Wrap(errors.ErrInvalidSignature, "missing public key")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrInvalidSignature, "missing signature")
	}
	return nil
}
