package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

var errEmptyHex = errors.New("empty hex string")

// TrimHexPrefix removes a leading 0x or 0X if present
func TrimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// HexToBig parses a hex string, with or without the 0x prefix, into a
// non-negative big integer. Leading zeros are accepted since the gateway
// pads asset ids and keys inconsistently.
func HexToBig(s string) (*big.Int, error) {
	raw := TrimHexPrefix(strings.TrimSpace(s))
	if raw == "" {
		return nil, errEmptyHex
	}

	n, ok := new(big.Int).SetString(raw, 16)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid hex string: %q", s)
	}

	return n, nil
}

// BigToHex encodes n as a 0x-prefixed lowercase hex string without padding
func BigToHex(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(n)
}

// DecimalPlaces returns the number of digits after the decimal point that d
// carries, e.g. 0.01 -> 2 and 5 -> 0. Trailing zeros in the literal count,
// matching how tick sizes are published ("0.10" has two places).
func DecimalPlaces(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

// RoundToPlaces rounds d half-to-even at the given number of places.
func RoundToPlaces(d decimal.Decimal, places int32) decimal.Decimal {
	return d.RoundBank(places)
}

// FormatDecimal renders d for the wire: no exponent, trailing zeros
// trimmed, "0" for zero.
func FormatDecimal(d decimal.Decimal) string {
	return d.String()
}

// JoinIDs joins ids with commas, the list encoding the gateway expects in
// query strings.
func JoinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
