package wallet

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func genesisWallet(addr custody.Address) GenesisWallet {
	return GenesisWallet{
		Address:   addr,
		Assistant: assistantKey,
		Update: WalletUpdate{
			ApprovalsRequiredForConfig: 1,
			ApprovalTimeoutForConfig:   3600,
			AddSigners:                 []SignerSlot{signerSlot(0, 1), signerSlot(1, 2)},
			AddConfigApprovers:         []SignerSlot{signerSlot(1, 2)},
			AddAddressBookEntries:      []EntrySlot{entrySlot(4, 1)},
		},
	}
}

func genesisOptions(t *testing.T, conf interface{}, wallets ...GenesisWallet) custody.Options {
	t.Helper()
	opts := custody.Options{}
	if conf != nil {
		raw, err := json.Marshal(map[string]interface{}{confPkg: conf})
		assert.Nil(t, err)
		opts["conf"] = raw
	}
	raw, err := json.Marshal(wallets)
	assert.Nil(t, err)
	opts[optKey] = raw
	return opts
}

func TestGenesis(t *testing.T) {
	first := custodytest.SequenceAddress(70)
	second := custodytest.SequenceAddress(71)
	opts := genesisOptions(t,
		map[string]interface{}{"operation_deposit": 5, "deposit_ticker": "FEE"},
		genesisWallet(first), genesisWallet(second))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	w, err := NewBucket().GetWallet(db, first)
	assert.Nil(t, err)
	assert.Equal(t, []custody.Address{signer(2).Key}, w.ConfigApproverKeys())
	e, ok := w.AddressBook.Get(4)
	assert.Equal(t, true, ok)
	assert.Equal(t, entry(1), e)

	ok, err = NewBucket().Exists(db, second)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, Configuration{OperationDeposit: 5, DepositTicker: "FEE"}, conf)
}

func TestGenesisWithoutConfiguration(t *testing.T) {
	db := store.MemStore()
	opts := genesisOptions(t, nil, genesisWallet(custodytest.SequenceAddress(70)))
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, Configuration{}, conf)
}

func TestGenesisErrors(t *testing.T) {
	addr := custodytest.SequenceAddress(70)

	noApprovers := genesisWallet(addr)
	noApprovers.Update.AddConfigApprovers = nil

	unknownApprover := genesisWallet(addr)
	unknownApprover.Update.AddConfigApprovers = []SignerSlot{signerSlot(9, 2)}

	cases := map[string]struct {
		opts    custody.Options
		wantErr *errors.Error
	}{
		"duplicated wallet": {
			opts:    genesisOptions(t, nil, genesisWallet(addr), genesisWallet(addr)),
			wantErr: errors.ErrDuplicate,
		},
		"threshold not reachable": {
			opts:    genesisOptions(t, nil, noApprovers),
			wantErr: errors.ErrThreshold,
		},
		"approver is not a signer": {
			opts:    genesisOptions(t, nil, unknownApprover),
			wantErr: errors.ErrSlotMismatch,
		},
		"invalid configuration": {
			opts:    genesisOptions(t, map[string]interface{}{"native_ticker": "SOL"}),
			wantErr: errors.ErrInput,
		},
		"malformed wallets": {
			opts:    custody.Options{optKey: []byte(`{"address": 1}`)},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := Initializer{}.FromGenesis(tc.opts, store.MemStore())
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
