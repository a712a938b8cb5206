package wallet

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/orm"
)

// BucketName is where wallets are stored.
const BucketName = "wallet"

// Bucket stores wallets under the wallet address.
type Bucket struct {
	orm.Bucket
}

// NewBucket returns a bucket for wallets.
func NewBucket() Bucket {
	return Bucket{orm.NewBucket(BucketName)}
}

// GetWallet loads the wallet stored under given address. It returns
// ErrNotFound if there is none.
func (b Bucket) GetWallet(db custody.ReadOnlyKVStore, addr custody.Address) (*Wallet, error) {
	var w Wallet
	if err := b.One(db, addr[:], &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Save validates the wallet and stores it under given address.
func (b Bucket) Save(db custody.KVStore, addr custody.Address, w *Wallet) error {
	return b.Put(db, addr[:], w)
}

// Exists returns true if a wallet is stored under given address.
func (b Bucket) Exists(db custody.ReadOnlyKVStore, addr custody.Address) (bool, error) {
	return b.Has(db, addr[:])
}
