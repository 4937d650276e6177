package types

import (
	"fmt"
	"regexp"

	sdkmath "cosmossdk.io/math"
)

// MaxAmountBits bounds bid amounts to 128 bits.
const MaxAmountBits = 128

// reDenom is the cosmos-sdk coin denom pattern (types/coin.go reDnmString).
var reDenom = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/:._-]{2,127}$`)

// ValidateDenom checks that denom is a well formed currency name.
func ValidateDenom(denom string) error {
	if !reDenom.MatchString(denom) {
		return newInvalidFunds("invalid coin denom %q", denom)
	}
	return nil
}

// Coin is an amount of a single fungible currency.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount sdkmath.Uint `json:"amount"`
}

func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: sdkmath.NewUint(amount)}
}

func (c Coin) String() string {
	return fmt.Sprintf("%s%s", c.Amount, c.Denom)
}

// IsZero treats an uninitialized amount as zero.
func (c Coin) IsZero() bool {
	return IsZeroAmount(c.Amount)
}

// IsZeroAmount reports whether a is zero or uninitialized.
func IsZeroAmount(a sdkmath.Uint) bool {
	return a.BigInt() == nil || a.IsZero()
}

// AmountFits reports whether a fits in MaxAmountBits.
func AmountFits(a sdkmath.Uint) bool {
	return a.BigInt() == nil || a.BigInt().BitLen() <= MaxAmountBits
}

// Coins is the list of funds attached to a transaction.
type Coins []Coin

func (cs Coins) String() string {
	if len(cs) == 0 {
		return ""
	}
	out := cs[0].String()
	for _, c := range cs[1:] {
		out += "," + c.String()
	}
	return out
}
