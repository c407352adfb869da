package account

import (
	"crypto/ed25519"
)

type Signer interface {
	PublicKey() ed25519.PublicKey
	Sign(message []byte) ([]byte, error)
}
