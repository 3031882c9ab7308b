// Package money provides exact arithmetic for currency-agnostic amounts.
//
// Amounts entered by users and persisted by the storage layer are decimals
// (github.com/shopspring/decimal). Derived values such as equal shares or
// proportional debt allocations are not always finite decimals (100 / 3), so
// every computation runs on exact rationals and only output is rounded.
package money

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// OutputPrecision is the number of fractional digits kept when an Amount is
// converted back to a decimal for display or transport.
const OutputPrecision = 16

// Epsilon is the one-cent tolerance used whenever a money value is compared
// against zero or against another money value.
var Epsilon = MustParse("0.01")

var hundred = FromInt(100)

// Amount is an exact money value. The zero value is 0.
// Amounts are immutable; every operation returns a new value.
type Amount struct {
	r *big.Rat
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// FromDecimal converts a decimal to an exact amount.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{r: d.Rat()}
}

// FromInt returns the amount n.
func FromInt(n int64) Amount {
	return Amount{r: new(big.Rat).SetInt64(n)}
}

// Parse reads a decimal string such as "12.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Hundred returns 100, the percentage base.
func Hundred() Amount {
	return hundred
}

func (a Amount) rat() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{r: new(big.Rat).Add(a.rat(), b.rat())}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{r: new(big.Rat).Sub(a.rat(), b.rat())}
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) Amount {
	return Amount{r: new(big.Rat).Mul(a.rat(), b.rat())}
}

// Div returns a / b exactly. It panics if b is zero; callers that can see a
// zero divisor must branch on IsZero first.
func (a Amount) Div(b Amount) Amount {
	return Amount{r: new(big.Rat).Quo(a.rat(), b.rat())}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{r: new(big.Rat).Neg(a.rat())}
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	return Amount{r: new(big.Rat).Abs(a.rat())}
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.rat().Cmp(b.rat())
}

// Sign returns -1, 0 or +1 depending on the sign of a.
func (a Amount) Sign() int {
	return a.rat().Sign()
}

// IsZero reports whether a is exactly zero.
func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a.Sign() > 0
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.Sign() < 0
}

// Equal reports whether a and b are exactly equal.
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// IsNegligible reports whether |a| < Epsilon.
func (a Amount) IsNegligible() bool {
	return a.Abs().Cmp(Epsilon) < 0
}

// ExceedsEpsilon reports whether a > Epsilon.
func (a Amount) ExceedsEpsilon() bool {
	return a.Cmp(Epsilon) > 0
}

// WithinEpsilon reports whether |a - b| <= Epsilon.
func (a Amount) WithinEpsilon(b Amount) bool {
	return a.Sub(b).Abs().Cmp(Epsilon) <= 0
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Sum adds up all amounts.
func Sum(amounts ...Amount) Amount {
	total := new(big.Rat)
	for _, a := range amounts {
		total.Add(total, a.rat())
	}
	return Amount{r: total}
}

// Decimal rounds a to OutputPrecision fractional digits.
func (a Amount) Decimal() decimal.Decimal {
	r := a.rat()
	num := decimal.NewFromBigInt(r.Num(), 0)
	den := decimal.NewFromBigInt(r.Denom(), 0)
	return num.DivRound(den, OutputPrecision)
}

// String formats a as a decimal without trailing zeros.
func (a Amount) String() string {
	return a.Decimal().String()
}

// StringFixed formats a with exactly places fractional digits.
func (a Amount) StringFixed(places int32) string {
	return a.Decimal().StringFixed(places)
}
