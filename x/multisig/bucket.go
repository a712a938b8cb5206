package multisig

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/orm"
)

// Bucket stores operations under the address of the operation.
type Bucket struct {
	orm.Bucket
}

// NewBucket returns a bucket for operations.
func NewBucket() Bucket {
	return Bucket{orm.NewBucket("msigop")}
}

// GetOperation loads the operation stored under given address. It returns
// ErrNotFound if there is none.
func (b Bucket) GetOperation(db custody.ReadOnlyKVStore, addr custody.Address) (*Operation, error) {
	var op Operation
	if err := b.One(db, addr[:], &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Save stores the operation under given address.
func (b Bucket) Save(db custody.KVStore, addr custody.Address, op *Operation) error {
	return b.Put(db, addr[:], op)
}

// Exists returns true if an operation is stored under given address.
func (b Bucket) Exists(db custody.ReadOnlyKVStore, addr custody.Address) (bool, error) {
	return b.Has(db, addr[:])
}

// Close removes the operation stored under given address. A closed
// operation cannot be reopened.
func (b Bucket) Close(db custody.KVStore, addr custody.Address) error {
	return b.Bucket.Delete(db, addr[:])
}
