package l2

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/google/uuid"
)

// Nonce derives the 32-bit L2 nonce from a client chosen id: the first four
// bytes of sha256(clientID), big endian. The same id always gives the same
// nonce, so a retried submission signs the same nonce.
func Nonce(clientID string) uint64 {
	sum := sha256.Sum256([]byte(clientID))
	return uint64(binary.BigEndian.Uint32(sum[:4]))
}

// NewClientID returns a fresh random client id
func NewClientID() string {
	return uuid.NewString()
}
