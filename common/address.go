package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	AddressLength    = 32
	AddressHexLength = AddressLength * 2
)

// Address is the 32 byte address of an account, resource account or
// object. Its canonical text form is "0x" followed by 64 lowercase hex
// digits.
type Address [AddressLength]byte

// NormalizeHex strips an optional 0x prefix from s and left pads it with
// '0' to 64 hex digits. It does not decode anything. Surrounding
// whitespace is rejected like any other non hex character.
func NormalizeHex(s string) (string, error) {
	raw := s
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		raw = raw[2:]
	}
	if raw == "" {
		return "", fmt.Errorf("%q: empty address: %w", s, ErrInvalidAddress)
	}
	if len(raw) > AddressHexLength {
		return "", fmt.Errorf(
			"%q: %d hex digits, at most %d allowed: %w",
			s, len(raw), AddressHexLength, ErrInvalidAddress,
		)
	}
	for i := 0; i < len(raw); i++ {
		if !isHexChar(raw[i]) {
			return "", fmt.Errorf("%q: non hex character %q: %w", s, raw[i], ErrInvalidAddress)
		}
	}
	return strings.Repeat("0", AddressHexLength-len(raw)) + strings.ToLower(raw), nil
}

func isHexChar(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// ParseAddress parses a hex account address of at most 32 bytes, with or
// without 0x prefix. Short forms such as "0x1" are zero padded on the left.
func ParseAddress(s string) (Address, error) {
	padded, err := NormalizeHex(s)
	if err != nil {
		return Address{}, err
	}
	b, err := hexutil.Decode("0x" + padded)
	if err != nil {
		return Address{}, fmt.Errorf("%q: %s: %w", s, err, ErrInvalidAddress)
	}
	return BytesToAddress(b), nil
}

// MustParseAddress is ParseAddress for constants and tests. It panics on
// malformed input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// CanonicalAddress returns the canonical form of s.
func CanonicalAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Hex(), nil
}

// IsHexAddress reports whether s is unmistakably written as an address:
// 0x prefixed, or all 64 hex digits without prefix. Short unprefixed hex
// such as "cafe" parses as an address but reads as a name too.
func IsHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") && len(s) != AddressHexLength {
		return false
	}
	_, err := ParseAddress(s)
	return err == nil
}

// BytesToAddress returns an Address with b as its value. If b is longer
// than 32 bytes only the last 32 are kept, shorter input is left padded.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

// Hex returns the canonical 0x-prefixed, 64 digit lowercase form.
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// IsSpecial reports whether a is one of the framework addresses 0x0..0xf
// that the chain prints in short form.
func (a Address) IsSpecial() bool {
	for _, b := range a[:AddressLength-1] {
		if b != 0 {
			return false
		}
	}
	return a[AddressLength-1] < 0x10
}

// ShortString returns "0x1" for special addresses and the canonical form
// for everything else. Module ids such as 0x1::object::ObjectCore use it.
func (a Address) ShortString() string {
	if a.IsSpecial() {
		return fmt.Sprintf("0x%x", a[AddressLength-1])
	}
	return a.Hex()
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

func (a *Address) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return fmt.Errorf("address must be a json string: %w", err)
	}
	return a.UnmarshalText([]byte(s))
}

// TruncateAddress shortens an address for narrow displays, keeping the
// first start and last end characters.
func TruncateAddress(address string, start, end int) string {
	if len(address) <= start+end {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:start], address[len(address)-end:])
}
