package common

import (
	"crypto/ed25519"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
)

// Derivation scheme tags. The VM hashes the source bytes followed by one
// of these bytes, so addresses derived for different purposes never
// collide.
const (
	Ed25519Scheme         byte = 0x00
	ObjectScheme          byte = 0xFE
	ResourceAccountScheme byte = 0xFF
)

func deriveWithScheme(source Address, seed []byte, scheme byte) Address {
	h := sha3.New256()
	_, _ = h.Write(source[:])
	_, _ = h.Write(seed)
	_, _ = h.Write([]byte{scheme})
	return BytesToAddress(h.Sum(nil))
}

// DeriveResourceAddress returns the address the VM assigns to a resource
// account created by owner with seed:
//
//	sha3_256(owner(32) ++ utf8(seed) ++ 0xFF)
//
// owner may be given in short form ("0x1") or without prefix.
func DeriveResourceAddress(owner string, seed string) (Address, error) {
	ownerAddr, err := ParseAddress(owner)
	if err != nil {
		return Address{}, fmt.Errorf("couldn't derive resource account: %w", err)
	}
	if !utf8.ValidString(seed) {
		return Address{}, fmt.Errorf("couldn't derive resource account from seed %q: %w", seed, ErrEncoding)
	}
	return DeriveResourceAddressFromBytes(ownerAddr, []byte(seed)), nil
}

// DeriveResourceAddressFromBytes is DeriveResourceAddress for callers that
// already hold a parsed owner and raw seed bytes.
func DeriveResourceAddressFromBytes(owner Address, seed []byte) Address {
	return deriveWithScheme(owner, seed, ResourceAccountScheme)
}

// DeriveObjectAddress returns the address of a named object created by
// creator with seed (object::create_named_object).
func DeriveObjectAddress(creator Address, seed []byte) Address {
	return deriveWithScheme(creator, seed, ObjectScheme)
}

// AuthKeyFromEd25519 returns the authentication key of a single key
// Ed25519 account, which is also its address until the key is rotated.
func AuthKeyFromEd25519(pub ed25519.PublicKey) Address {
	h := sha3.New256()
	_, _ = h.Write(pub)
	_, _ = h.Write([]byte{Ed25519Scheme})
	return BytesToAddress(h.Sum(nil))
}
