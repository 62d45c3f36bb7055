package types

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/banky/go-edgex/internal/utils"
	"github.com/vmihailenco/msgpack/v5"
)

// HexInt is a non-negative integer carried on the wire as a hex string, such
// as an L2 asset id ("0x2893...") or a resolution factor ("0x5f5e100").
// The zero value is 0.
type HexInt struct {
	v *big.Int
}

// HexToInt parses s, with or without a 0x prefix.
func HexToInt(s string) (HexInt, error) {
	n, err := utils.HexToBig(s)
	if err != nil {
		return HexInt{}, err
	}
	return HexInt{v: n}, nil
}

// BigToHexInt wraps a copy of b
func BigToHexInt(b *big.Int) HexInt {
	if b == nil {
		return HexInt{}
	}
	return HexInt{v: new(big.Int).Set(b)}
}

// Big returns a copy of the underlying value so callers can never mutate a
// metadata snapshot through it.
func (h HexInt) Big() *big.Int {
	if h.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(h.v)
}

// IsZero reports whether h is unset or zero
func (h HexInt) IsZero() bool {
	return h.v == nil || h.v.Sign() == 0
}

// Hex converts h to a 0x-prefixed hex string.
func (h HexInt) Hex() string { return utils.BigToHex(h.v) }

// String implements the stringer interface
func (h HexInt) String() string {
	return h.Hex()
}

// UnmarshalJSON parses a HexInt from a JSON string. An empty string or null
// leaves h at zero.
func (h *HexInt) UnmarshalJSON(input []byte) error {
	if string(input) == "null" {
		*h = HexInt{}
		return nil
	}

	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return fmt.Errorf("hex int must be a string: %w", err)
	}

	if s == "" {
		*h = HexInt{}
		return nil
	}

	v, err := HexToInt(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// MarshalText returns the hex representation of h.
func (h HexInt) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

var _ msgpack.CustomEncoder = (*HexInt)(nil)
var _ msgpack.CustomDecoder = (*HexInt)(nil)

func (h HexInt) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(h.Hex())
}

func (h *HexInt) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}

	v, err := HexToInt(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}
