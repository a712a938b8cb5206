package cash

import (
	"math"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestController(t *testing.T) {
	alice := custodytest.SequenceAddress(1)
	bob := custodytest.SequenceAddress(2)

	db := store.MemStore()
	ctrl := NewController()

	assert.Nil(t, ctrl.IssueCoins(db, alice, NewCoin(100, "IOV")))
	assert.Nil(t, ctrl.IssueCoins(db, alice, NewCoin(7, "ETH")))

	assert.Nil(t, ctrl.MoveCoins(db, alice, bob, NewCoin(60, "IOV")))
	assertBalance(t, ctrl, db, alice, "IOV", 40)
	assertBalance(t, ctrl, db, bob, "IOV", 60)
	assertBalance(t, ctrl, db, bob, "ETH", 0)

	err := ctrl.MoveCoins(db, alice, bob, NewCoin(41, "IOV"))
	assert.IsErr(t, errors.ErrAmount, err)
	assertBalance(t, ctrl, db, alice, "IOV", 40)

	err = ctrl.MoveCoins(db, alice, bob, NewCoin(0, "IOV"))
	assert.IsErr(t, errors.ErrAmount, err)

	err = ctrl.MoveCoins(db, alice, bob, NewCoin(1, "iov"))
	assert.IsErr(t, errors.ErrInput, err)

	err = ctrl.IssueCoins(db, bob, NewCoin(math.MaxUint64, "IOV"))
	assert.IsErr(t, errors.ErrAmount, err)

	assert.Nil(t, ctrl.BurnCoins(db, alice, NewCoin(40, "IOV")))
	assertBalance(t, ctrl, db, alice, "IOV", 0)

	assertBalance(t, ctrl, db, alice, "ETH", 7)
}

func assertBalance(t testing.TB, ctrl Controller, db store.ReadOnlyKVStore, addr custody.Address, ticker string, want uint64) {
	t.Helper()
	got, err := ctrl.Balance(db, addr, ticker)
	if err != nil {
		t.Fatalf("balance: %s", err)
	}
	if got != want {
		t.Fatalf("want %d %s, got %d", want, ticker, got)
	}
}

func TestBalanceProtobufRoundTrip(t *testing.T) {
	b := Balance{Amount: 123456789}
	raw, err := b.Marshal()
	assert.Nil(t, err)

	var got Balance
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, b, got)
}
