package exchange

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/banky/go-edgex/l2"
	"github.com/banky/go-edgex/rest"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	headerTimestamp = "X-edgeX-Api-Timestamp"
	headerSignature = "X-edgeX-Api-Signature"
)

// RequestAuthenticator signs private requests with the account's L2 key.
// The signed content is timestamp ‖ method ‖ path ‖ payload, hashed with
// keccak256.
func RequestAuthenticator(signer l2.Signer, clock func() time.Time) rest.Authenticator {
	if clock == nil {
		clock = time.Now
	}

	return func(method, path string, payload []byte) (map[string]string, error) {
		timestamp := strconv.FormatInt(clock().UnixMilli(), 10)

		content := make([]byte, 0, len(timestamp)+len(method)+len(path)+len(payload))
		content = append(content, timestamp...)
		content = append(content, method...)
		content = append(content, path...)
		content = append(content, payload...)

		hash := new(big.Int).SetBytes(crypto.Keccak256(content))
		sig, err := signer.Sign(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to sign request: %w", &l2.SigningError{Err: err})
		}
		if sig.R == nil || sig.S == nil {
			return nil, &l2.SigningError{Err: fmt.Errorf("incomplete request signature")}
		}

		return map[string]string{
			headerTimestamp: timestamp,
			headerSignature: sig.Wire(),
		}, nil
	}
}
