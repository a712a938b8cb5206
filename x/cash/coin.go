package cash

import (
	"fmt"
	"regexp"

	"github.com/iov-one/custody/errors"
)

// IsCC is the RegExp to ensure a valid currency code
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// Coin is an amount of a single currency.
type Coin struct {
	Amount uint64 `json:"amount"`
	Ticker string `json:"ticker"`
}

// NewCoin returns a coin of given amount and ticker.
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{Amount: amount, Ticker: ticker}
}

// Validate requires a positive amount of a valid currency.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrInput, "invalid ticker %q", c.Ticker)
	}
	if c.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	return nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%d %s", c.Amount, c.Ticker)
}
