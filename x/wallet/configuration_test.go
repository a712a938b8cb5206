package wallet

import (
	"testing"
	"time"

	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/store"
)

func TestConfigurationMarshal(t *testing.T) {
	cases := map[string]Configuration{
		"empty": {},
		"full": {
			Owner:            custodytest.SequenceAddress(7),
			OperationDeposit: 10,
			DepositTicker:    "FEE",
			NativeTicker:     "SOL",
			WrappedTicker:    "WSOL",
		},
		"no owner": {OperationDeposit: 1, DepositTicker: "FEE"},
	}
	for testName, conf := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := conf.Marshal()
			assert.Nil(t, err)
			var got Configuration
			assert.Nil(t, got.Unmarshal(raw))
			assert.Equal(t, conf, got)
		})
	}
}

func TestConfigurationValidate(t *testing.T) {
	cases := map[string]struct {
		conf    Configuration
		wantErr *errors.Error
	}{
		"zero configuration": {},
		"deposit": {
			conf: Configuration{OperationDeposit: 3, DepositTicker: "FEE"},
		},
		"deposit without ticker": {
			conf:    Configuration{OperationDeposit: 3},
			wantErr: errors.ErrInput,
		},
		"invalid deposit ticker": {
			conf:    Configuration{OperationDeposit: 3, DepositTicker: "fee"},
			wantErr: errors.ErrInput,
		},
		"wrapping": {
			conf: Configuration{NativeTicker: "SOL", WrappedTicker: "WSOL"},
		},
		"wrapped ticker missing": {
			conf:    Configuration{NativeTicker: "SOL"},
			wantErr: errors.ErrInput,
		},
		"same tickers": {
			conf:    Configuration{NativeTicker: "SOL", WrappedTicker: "SOL"},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, tc.conf.Validate())
		})
	}
}

func TestLoadConfWithoutConfiguration(t *testing.T) {
	conf, err := loadConf(store.MemStore())
	assert.Nil(t, err)
	assert.Equal(t, Configuration{}, conf)

	_, ok := conf.deposit()
	assert.Equal(t, false, ok)
}

func TestUpdateConfiguration(t *testing.T) {
	owner := custodytest.SequenceAddress(7)
	db := store.MemStore()
	assert.Nil(t, gconf.Save(db, confPkg, &Configuration{
		Owner:            owner,
		OperationDeposit: 10,
		DepositTicker:    "FEE",
	}))

	auth := &custodytest.CtxAuth{Key: "auth"}
	h := gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil)
	now := time.Now()

	msg := &UpdateConfigurationMsg{Patch: &Configuration{NativeTicker: "SOL", WrappedTicker: "WSOL"}}
	tx := &custodytest.Tx{Msg: msg}

	ctx := auth.SetSigners(custodytest.Context(now), custodytest.SequenceAddress(8))
	_, err := h.Deliver(ctx, db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ctx = auth.SetSigners(custodytest.Context(now), owner)
	_, err = h.Deliver(ctx, db, tx)
	assert.Nil(t, err)

	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, Configuration{
		Owner:            owner,
		OperationDeposit: 10,
		DepositTicker:    "FEE",
		NativeTicker:     "SOL",
		WrappedTicker:    "WSOL",
	}, conf)

	// The patched configuration must still be valid.
	bad := &custodytest.Tx{Msg: &UpdateConfigurationMsg{Patch: &Configuration{WrappedTicker: "SOL"}}}
	_, err = h.Deliver(ctx, db, bad)
	assert.IsErr(t, errors.ErrInput, err)
}
