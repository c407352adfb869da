package account

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tranvictor/kiosk/common"
)

type Account struct {
	signer  Signer
	address common.Address
}

// NewKeyAccount loads the private key file at file. The account address
// is the authentication key of the key.
func NewKeyAccount(file string) (*Account, error) {
	addr, key, err := PrivateKeyFromFile(file)
	if err != nil {
		return nil, err
	}
	return &Account{NewKeySigner(key), addr}, nil
}

func NewKeyAccountFromHex(hex string) (*Account, error) {
	addr, key, err := PrivateKeyFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &Account{NewKeySigner(key), addr}, nil
}

// NewAccount couples signer with address, for accounts whose key was
// rotated so the address no longer matches the key.
func NewAccount(signer Signer, address common.Address) *Account {
	return &Account{signer, address}
}

func (a *Account) Address() common.Address {
	return a.address
}

func (a *Account) AddressHex() string {
	return a.address.Hex()
}

func (a *Account) PublicKey() ed25519.PublicKey {
	return a.signer.PublicKey()
}

// SignTransaction signs signingMessage, which must be
// common.SigningMessage of raw, and attaches the signature to raw.
func (a *Account) SignTransaction(raw *common.RawTransaction, signingMessage []byte) (*common.SignedTransaction, error) {
	if raw == nil {
		return nil, fmt.Errorf("nothing to sign")
	}
	if raw.Sender != a.AddressHex() {
		return nil, fmt.Errorf("tx sender %s is not %s", raw.Sender, a.AddressHex())
	}
	sig, err := a.signer.Sign(signingMessage)
	if err != nil {
		return nil, fmt.Errorf("couldn't sign the tx: %w", err)
	}
	return &common.SignedTransaction{
		RawTransaction: *raw,
		Signature: &common.Ed25519Signature{
			Type:      common.Ed25519SignatureType,
			PublicKey: hexutil.Encode(a.signer.PublicKey()),
			Signature: hexutil.Encode(sig),
		},
	}, nil
}
