package cash

import (
	"math"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Controller is the functionality needed by other packages to move
// balances.
type Controller struct {
	bucket Bucket
}

// NewController returns a controller using the default bucket.
func NewController() Controller {
	return Controller{bucket: NewBucket()}
}

// Balance returns the amount of ticker held by addr.
func (c Controller) Balance(db custody.ReadOnlyKVStore, addr custody.Address, ticker string) (uint64, error) {
	return c.bucket.Get(db, addr, ticker)
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, it fails.
func (c Controller) MoveCoins(db custody.KVStore, src, dest custody.Address, amount Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if src == dest {
		have, err := c.bucket.Get(db, src, amount.Ticker)
		if err != nil {
			return err
		}
		if have < amount.Amount {
			return errors.Wrapf(errors.ErrAmount, "insufficient funds: %d < %s", have, amount)
		}
		return nil
	}
	if err := c.BurnCoins(db, src, amount); err != nil {
		return err
	}
	return c.IssueCoins(db, dest, amount)
}

// IssueCoins adds the given amount of coins to the destination address.
// Fails if it overflows the balance.
func (c Controller) IssueCoins(db custody.KVStore, dest custody.Address, amount Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	have, err := c.bucket.Get(db, dest, amount.Ticker)
	if err != nil {
		return err
	}
	if have > math.MaxUint64-amount.Amount {
		return errors.Wrapf(errors.ErrAmount, "balance overflow of %s", dest)
	}
	return c.bucket.Set(db, dest, amount.Ticker, have+amount.Amount)
}

// BurnCoins removes the given amount of coins from the source address.
// Fails if the source does not hold enough.
func (c Controller) BurnCoins(db custody.KVStore, src custody.Address, amount Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	have, err := c.bucket.Get(db, src, amount.Ticker)
	if err != nil {
		return err
	}
	if have < amount.Amount {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %d < %s", have, amount)
	}
	return c.bucket.Set(db, src, amount.Ticker, have-amount.Amount)
}
