package account

import (
	"crypto/ed25519"
)

type KeySigner struct {
	key ed25519.PrivateKey
}

func (ks *KeySigner) PublicKey() ed25519.PublicKey {
	return ks.key.Public().(ed25519.PublicKey)
}

func (ks *KeySigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(ks.key, message), nil
}

func NewKeySigner(key ed25519.PrivateKey) *KeySigner {
	return &KeySigner{key}
}
