package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Balance is the amount of a single ticker held by an address.
type Balance struct {
	Amount uint64 `protobuf:"varint,1,opt,name=amount,proto3" json:"amount"`
}

var _ orm.Model = (*Balance)(nil)

// balanceMsg is the protobuf message of a Balance.
type balanceMsg Balance

func (m *balanceMsg) Reset()         { *m = balanceMsg{} }
func (m *balanceMsg) String() string { return proto.CompactTextString(m) }
func (*balanceMsg) ProtoMessage()    {}

// Marshal serializes the balance using protobuf.
func (b *Balance) Marshal() ([]byte, error) {
	return proto.Marshal((*balanceMsg)(b))
}

// Unmarshal loads a balance serialized with Marshal.
func (b *Balance) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*balanceMsg)(b))
}

// Validate is a noop, every amount is valid.
func (b *Balance) Validate() error {
	return nil
}

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName)}
}

func balanceKey(addr custody.Address, ticker string) []byte {
	return append(addr[:], ticker...)
}

// Get returns the amount of ticker held by addr. An address without a
// record holds nothing.
func (b Bucket) Get(db custody.ReadOnlyKVStore, addr custody.Address, ticker string) (uint64, error) {
	key := balanceKey(addr, ticker)
	ok, err := b.Has(db, key)
	if err != nil || !ok {
		return 0, err
	}
	var bal Balance
	if err := b.One(db, key, &bal); err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

// Set stores the amount of ticker held by addr. Empty balances are
// removed.
func (b Bucket) Set(db custody.KVStore, addr custody.Address, ticker string, amount uint64) error {
	key := balanceKey(addr, ticker)
	if amount == 0 {
		ok, err := b.Has(db, key)
		if err != nil || !ok {
			return err
		}
		return b.Delete(db, key)
	}
	return b.Put(db, key, &Balance{Amount: amount})
}
