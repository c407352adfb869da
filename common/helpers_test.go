package common

import "golang.org/x/crypto/sha3"

func sha3Sum(b []byte) Address {
	return Address(sha3.Sum256(b))
}
