package l2

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/banky/go-edgex/internal/utils"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
)

// Signer signs a message hash with the account's L2 key. Implementations
// must not mutate or log the key.
type Signer interface {
	Sign(hash *big.Int) (Signature, error)
}

var errHashRange = errors.New("message hash does not fit in 256 bits")

// KeySigner signs with a secp256k1 key through go-ethereum. It is meant for
// development and tests against a gateway that accepts such keys.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

var _ Signer = (*KeySigner)(nil)

// NewKeySigner wraps key
func NewKeySigner(key *ecdsa.PrivateKey) (*KeySigner, error) {
	if key == nil {
		return nil, errors.New("private key is required")
	}
	return &KeySigner{key: key}, nil
}

// KeySignerFromHex parses a hex private key, with or without 0x
func KeySignerFromHex(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(utils.TrimHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewKeySigner(key)
}

// PublicKey returns the uncompressed public key as hex
func (k *KeySigner) PublicKey() string {
	return fmt.Sprintf("%x", crypto.FromECDSAPub(&k.key.PublicKey))
}

func (k *KeySigner) Sign(hash *big.Int) (Signature, error) {
	if hash == nil || hash.Sign() < 0 || hash.BitLen() > 256 {
		return Signature{}, errHashRange
	}

	sig, err := crypto.Sign(math.PaddedBigBytes(hash, 32), k.key)
	if err != nil {
		return Signature{}, err
	}

	return Signature{
		R: new(big.Int).SetBytes(sig[:32]),
		S: new(big.Int).SetBytes(sig[32:64]),
		V: mo.Some(sig[64]),
	}, nil
}
