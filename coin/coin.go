// Package coin models payment amounts attached to registry requests and
// checks them against configured prices.
package coin

import (
	"errors"
	"fmt"
)

// ErrInsufficientFunds is returned when no attached coin covers the required price.
var ErrInsufficientFunds = errors.New("nameservice: insufficient funds sent")

// Coin is an amount of a single denomination.
// Amount is encoded as a decimal string on the wire.
type Coin struct {
	Denom  string `json:"denom" dynamodbav:"denom"`
	Amount uint64 `json:"amount,string" dynamodbav:"amount"`
}

// New returns a Coin of the given amount and denomination.
func New(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// String renders the coin as "<amount><denom>", e.g. "100earth".
func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// Coins is an ordered bundle of coins attached to a single request.
type Coins []Coin

// AssertSufficient checks that sent covers required.
//
// A nil required price, or one with a zero amount, is free. Otherwise a single
// entry must match the denomination with at least the required amount;
// amounts of the same denomination are never summed.
func AssertSufficient(sent Coins, required *Coin) error {
	if required == nil || required.IsZero() {
		return nil
	}
	for _, c := range sent {
		if c.Denom == required.Denom && c.Amount >= required.Amount {
			return nil
		}
	}
	return fmt.Errorf("%w: requires %s", ErrInsufficientFunds, required)
}
