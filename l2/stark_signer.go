package l2

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/banky/go-edgex/internal/utils"
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	starkecdsa "github.com/consensys/gnark-crypto/ecc/stark-curve/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/ethereum/go-ethereum/common/math"
)

const (
	starkHashBits = 251
	// each attempt draws a fresh nonce
	maxStarkSignAttempts = 8
)

var (
	errStarkKeyRange  = errors.New("stark private key must be in [1, curve order)")
	errStarkHashRange = errors.New("message hash does not fit in 251 bits")
	errStarkSignRetry = errors.New("no in range signature after retries")

	starkBound = new(big.Int).Lsh(big.NewInt(1), starkHashBits)
)

// StarkSigner signs with the account's Stark curve key, the key the
// settlement layer verifies L2 signatures against.
type StarkSigner struct {
	key *starkecdsa.PrivateKey
}

var _ Signer = (*StarkSigner)(nil)

// NewStarkSigner builds a signer from the private scalar
func NewStarkSigner(scalar *big.Int) (*StarkSigner, error) {
	if scalar == nil || scalar.Sign() <= 0 || scalar.Cmp(fr.Modulus()) >= 0 {
		return nil, errStarkKeyRange
	}

	var pub starkcurve.G1Affine
	pub.ScalarMultiplicationBase(scalar)
	pubBytes := pub.Bytes()

	buf := make([]byte, 0, len(pubBytes)+fr.Bytes)
	buf = append(buf, pubBytes[:]...)
	buf = append(buf, math.PaddedBigBytes(scalar, fr.Bytes)...)

	key := new(starkecdsa.PrivateKey)
	if _, err := key.SetBytes(buf); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &StarkSigner{key: key}, nil
}

// StarkSignerFromHex parses a hex private key, with or without 0x
func StarkSignerFromHex(hexKey string) (*StarkSigner, error) {
	scalar, err := utils.HexToBig(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewStarkSigner(scalar)
}

// PublicKey returns the x coordinate of the public key as 0x-prefixed hex,
// the form the gateway publishes as l2Key.
func (s *StarkSigner) PublicKey() string {
	return utils.BigToHex(s.key.PublicKey.A.X.BigInt(new(big.Int)))
}

// Sign produces r and s below 2^251 with s^-1 below 2^251 as well, which
// the settlement layer requires on top of plain ECDSA validity.
func (s *StarkSigner) Sign(hash *big.Int) (Signature, error) {
	if hash == nil || hash.Sign() < 0 || hash.Cmp(starkBound) >= 0 {
		return Signature{}, errStarkHashRange
	}

	msg := math.PaddedBigBytes(hash, fr.Bytes)
	order := fr.Modulus()

	for attempt := 0; attempt < maxStarkSignAttempts; attempt++ {
		_, r, sv, err := s.key.SignForRecover(msg, nil)
		if err != nil {
			return Signature{}, err
		}

		w := new(big.Int).ModInverse(sv, order)
		if r.Cmp(starkBound) < 0 && sv.Cmp(starkBound) < 0 && w != nil && w.Cmp(starkBound) < 0 {
			return Signature{R: r, S: sv}, nil
		}
	}

	return Signature{}, errStarkSignRetry
}

// Verify reports whether sig is a valid signature of hash under this key
func (s *StarkSigner) Verify(hash *big.Int, sig Signature) (bool, error) {
	if hash == nil || hash.Sign() < 0 || hash.Cmp(starkBound) >= 0 {
		return false, errStarkHashRange
	}
	if sig.R == nil || sig.S == nil || sig.R.Sign() <= 0 || sig.S.Sign() <= 0 ||
		sig.R.BitLen() > 8*fr.Bytes || sig.S.BitLen() > 8*fr.Bytes {
		return false, nil
	}

	var raw starkecdsa.Signature
	sig.R.FillBytes(raw.R[:])
	sig.S.FillBytes(raw.S[:])

	ok, err := s.key.PublicKey.Verify(raw.Bytes(), math.PaddedBigBytes(hash, fr.Bytes), nil)
	if err != nil {
		return false, nil
	}
	return ok, nil
}
