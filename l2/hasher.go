package l2

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
)

// Hasher is the protocol's two-to-one field hash
type Hasher interface {
	Hash(left, right *big.Int) (*big.Int, error)
}

var errOperandRange = errors.New("hash operand is nil or outside the field")

// PedersenHasher is the Stark curve Pedersen hash the settlement layer
// verifies messages with.
type PedersenHasher struct{}

var _ Hasher = PedersenHasher{}

func (PedersenHasher) Hash(left, right *big.Int) (*big.Int, error) {
	a, err := fieldElement(left)
	if err != nil {
		return nil, err
	}
	b, err := fieldElement(right)
	if err != nil {
		return nil, err
	}

	h := pedersenhash.Pedersen(a, b)
	return h.BigInt(new(big.Int)), nil
}

// fieldElement rejects operands the field would silently reduce
func fieldElement(v *big.Int) (*fp.Element, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(fp.Modulus()) >= 0 {
		return nil, errOperandRange
	}
	return new(fp.Element).SetBigInt(v), nil
}
