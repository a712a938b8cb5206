package wallet

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/cash"
)

// DepositBucketName is where charged operation deposits are recorded.
const DepositBucketName = "opdeposit"

// Deposit is the amount charged when an operation was proposed. Only this
// amount is returned when the operation is finalized, whatever else the
// operation address holds.
type Deposit struct {
	Amount uint64 `protobuf:"varint,1,opt,name=amount,proto3" json:"amount"`
	Ticker string `protobuf:"bytes,2,opt,name=ticker,proto3" json:"ticker"`
}

var _ orm.Model = (*Deposit)(nil)

type depositMsg Deposit

func (m *depositMsg) Reset()         { *m = depositMsg{} }
func (m *depositMsg) String() string { return proto.CompactTextString(m) }
func (*depositMsg) ProtoMessage()    {}

// Marshal serializes the deposit using protobuf.
func (d *Deposit) Marshal() ([]byte, error) {
	return proto.Marshal((*depositMsg)(d))
}

// Unmarshal loads a deposit serialized with Marshal.
func (d *Deposit) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*depositMsg)(d))
}

func (d *Deposit) Validate() error {
	if d.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "deposit")
	}
	if !cash.IsCC(d.Ticker) {
		return errors.Wrapf(errors.ErrInput, "invalid ticker %q", d.Ticker)
	}
	return nil
}

// Coin returns the deposit as a coin.
func (d *Deposit) Coin() cash.Coin {
	return cash.NewCoin(d.Amount, d.Ticker)
}

// DepositBucket stores deposits under the operation address.
type DepositBucket struct {
	orm.Bucket
}

// NewDepositBucket returns a bucket for operation deposits.
func NewDepositBucket() DepositBucket {
	return DepositBucket{orm.NewBucket(DepositBucketName)}
}

// Charge moves the deposit from the initiator to the operation address and
// records it.
func (b DepositBucket) Charge(db custody.KVStore, bank Bank, initiator, opAddr custody.Address, c cash.Coin) error {
	if err := bank.MoveCoins(db, initiator, opAddr, c); err != nil {
		return err
	}
	return b.Put(db, opAddr[:], &Deposit{Amount: c.Amount, Ticker: c.Ticker})
}

// Refund moves the recorded deposit of an operation to the collector and
// forgets it. An operation without a deposit refunds nothing.
func (b DepositBucket) Refund(db custody.KVStore, bank Bank, opAddr, collector custody.Address) (cash.Coin, error) {
	switch ok, err := b.Has(db, opAddr[:]); {
	case err != nil:
		return cash.Coin{}, err
	case !ok:
		return cash.Coin{}, nil
	}
	var d Deposit
	if err := b.One(db, opAddr[:], &d); err != nil {
		return cash.Coin{}, err
	}
	if err := bank.MoveCoins(db, opAddr, collector, d.Coin()); err != nil {
		return cash.Coin{}, err
	}
	if err := b.Delete(db, opAddr[:]); err != nil {
		return cash.Coin{}, err
	}
	return d.Coin(), nil
}
