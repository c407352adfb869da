package account

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tranvictor/kiosk/common"
)

// PrivateKeyPrefix is the AIP-80 prefix the Aptos CLI and wallets put in
// front of exported ed25519 keys.
const PrivateKeyPrefix = "ed25519-priv-"

// ParseSeedHex parses a 32 byte ed25519 seed. It accepts the naked hex
// form, the 0x form and the ed25519-priv-0x form.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, PrivateKeyPrefix)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("private key is not hex: %w", err)
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func AddressFromPrivateKey(key ed25519.PrivateKey) common.Address {
	return common.AuthKeyFromEd25519(key.Public().(ed25519.PublicKey))
}

// PrivateKeyFromHex works with both 0x prefix form and naked form.
func PrivateKeyFromHex(hex string) (common.Address, ed25519.PrivateKey, error) {
	seed, err := ParseSeedHex(hex)
	if err != nil {
		return common.Address{}, nil, err
	}
	key := ed25519.NewKeyFromSeed(seed)
	return AddressFromPrivateKey(key), key, nil
}

func PrivateKeyFromFile(file string) (common.Address, ed25519.PrivateKey, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return common.Address{}, nil, err
	}
	addr, key, err := PrivateKeyFromHex(string(data))
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("%s: %w", file, err)
	}
	return addr, key, nil
}

// SavePrivateKeyFile writes the seed of key in hex to dir/<address>.key,
// readable by the owner only. It refuses to overwrite an existing file.
func SavePrivateKeyFile(key ed25519.PrivateKey, dir string) (string, error) {
	if err := os.MkdirAll(filepath.Clean(dir), 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(filepath.Clean(dir), AddressFromPrivateKey(key).Hex()+".key")
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := file.WriteString(PrivateKeyPrefix + "0x" + hex.EncodeToString(key.Seed()) + "\n"); err != nil {
		return "", err
	}
	return path, file.Close()
}

// RandomPrivateKeyFile generates a new key and saves it with
// SavePrivateKeyFile.
func RandomPrivateKeyFile(dir string) (string, ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, err
	}
	path, err := SavePrivateKeyFile(key, dir)
	return path, key, err
}
