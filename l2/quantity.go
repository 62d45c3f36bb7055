package l2

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errEmpty          = errors.New("empty value")
	errNegative       = errors.New("negative value")
	errZeroResolution = errors.New("resolution must be positive")
)

// ParseAmount parses a human decimal string. Empty, non-numeric and
// negative input fail with an *AmountError naming field.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, amountError(field, raw, errEmpty)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, amountError(field, raw, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, amountError(field, raw, errNegative)
	}

	return d, nil
}

// ToQuantums scales d by a resolution factor and truncates toward zero.
func ToQuantums(d decimal.Decimal, factor *big.Int) *big.Int {
	return d.Mul(decimal.NewFromBigInt(factor, 0)).BigInt()
}

// ShiftQuantums scales d by 10^decimals and truncates toward zero.
func ShiftQuantums(d decimal.Decimal, decimals int32) *big.Int {
	return d.Shift(decimals).BigInt()
}

// OrderValue is the notional of an order in full precision
func OrderValue(price, size decimal.Decimal) decimal.Decimal {
	return price.Mul(size)
}

// LimitFee is the most the exchange may charge for an order, rounded up to
// a whole collateral unit so it never understates the real fee.
func LimitFee(size, price, rate decimal.Decimal) decimal.Decimal {
	return size.Mul(price).Mul(rate).Ceil()
}

// FeeQuantums scales a limit fee into collateral quantums. limitFee is
// already integral so no rounding happens here.
func FeeQuantums(limitFee decimal.Decimal, factor *big.Int) *big.Int {
	return ToQuantums(limitFee, factor)
}
