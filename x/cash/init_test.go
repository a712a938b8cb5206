package cash

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestGenesis(t *testing.T) {
	addr := custodytest.SequenceAddress(3)
	genesis := `{"cash": [{"address": "` + addr.String() + `", "coins": [{"amount": 50, "ticker": "IOV"}, {"amount": 5, "ticker": "IOV"}]}]}`

	var opts custody.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	got, err := NewController().Balance(db, addr, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, uint64(55), got)
}

func TestGenesisRejectsInvalidCoin(t *testing.T) {
	addr := custodytest.SequenceAddress(3)
	genesis := `{"cash": [{"address": "` + addr.String() + `", "coins": [{"amount": 0, "ticker": "IOV"}]}]}`

	var opts custody.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.IsErr(t, errors.ErrAmount, err)
}
