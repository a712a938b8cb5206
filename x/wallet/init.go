package wallet

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const optKey = "wallets"

// GenesisWallet is a wallet created by the genesis.
type GenesisWallet struct {
	Address   custody.Address `json:"address"`
	Assistant custody.Address `json:"assistant"`
	Update    WalletUpdate    `json:"update"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores the configuration found under "conf"/"wallet" and
// creates all wallets listed under "wallets".
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	if err := gconf.InitConfig(db, opts, confPkg, &Configuration{}); err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "configuration")
	}

	var wallets []GenesisWallet
	if err := opts.ReadOptions(optKey, &wallets); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	bucket := NewBucket()
	for i, gw := range wallets {
		msg := InitWalletMsg{Wallet: gw.Address, Assistant: gw.Assistant, Update: gw.Update}
		if err := msg.Validate(); err != nil {
			return errors.Wrapf(err, "wallet %d", i)
		}
		switch exists, err := bucket.Exists(db, gw.Address); {
		case err != nil:
			return err
		case exists:
			return errors.Wrapf(errors.ErrDuplicate, "wallet %d", i)
		}
		w := NewWallet(Signer{Key: gw.Assistant})
		if err := w.Update(&gw.Update); err != nil {
			return errors.Wrapf(err, "wallet %d", i)
		}
		if err := bucket.Save(db, gw.Address, w); err != nil {
			return errors.Wrapf(err, "wallet %d", i)
		}
	}
	return nil
}
