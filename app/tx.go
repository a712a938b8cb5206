package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/sigs"
)

// Tx is the transaction submitted to the ledger: a single message with the
// signatures of everyone authorizing it.
type Tx struct {
	Msg        custody.Msg
	Signatures []*sigs.StdSignature
}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx returns an unsigned transaction carrying given message.
func NewTx(msg custody.Msg) *Tx {
	return &Tx{Msg: msg}
}

func (tx *Tx) GetMsg() (custody.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes binds the message path together with the message so that
// the same payload cannot be replayed against another handler.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	raw, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal msg")
	}
	path := msg.Path()
	b := make([]byte, 0, len(path)+1+len(raw))
	b = append(b, path...)
	b = append(b, 0)
	return append(b, raw...), nil
}

// Sign appends a signature of given key, created for the current sequence
// of the signer account.
func (tx *Tx) Sign(db custody.ReadOnlyKVStore, signer crypto.Signer, chainID string) error {
	seq, err := sigs.NextNonce(db, signer.PublicKey())
	if err != nil {
		return errors.Wrap(err, "nonce")
	}
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
