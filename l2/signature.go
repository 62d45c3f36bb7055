package l2

import (
	"fmt"
	"math/big"

	"github.com/samber/mo"
)

// Signature is what a Signer returns for one message hash
type Signature struct {
	R *big.Int
	S *big.Int
	V mo.Option[uint8]
}

// RS concatenates r and s as 64 hex digits each. Orders and transfers carry
// this form.
func (s Signature) RS() string {
	return fmt.Sprintf("%064x%064x", s.R, s.S)
}

// Wire is RS followed by v as two hex digits when the signer returned one.
// Withdrawals and request headers carry this form.
func (s Signature) Wire() string {
	out := s.RS()
	if v, ok := s.V.Get(); ok {
		out += fmt.Sprintf("%02x", v)
	}
	return out
}
