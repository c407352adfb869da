package common

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// ErrUnencodable is returned when a transaction can't be encoded locally,
// usually because an argument has no known Move type.
var ErrUnencodable = errors.New("can't encode transaction")

// Move type tag variants as the VM numbers them.
const (
	tagBool    uint8 = 0
	tagU8      uint8 = 1
	tagU64     uint8 = 2
	tagU128    uint8 = 3
	tagAddress uint8 = 4
	tagSigner  uint8 = 5
	tagVector  uint8 = 6
	tagStruct  uint8 = 7
	tagU16     uint8 = 8
	tagU32     uint8 = 9
	tagU256    uint8 = 10

	entryFunctionVariant = 2

	rawTransactionSalt = "APTOS::RawTransaction"
)

var primitiveTags = map[string]uint8{
	"bool":    tagBool,
	"u8":      tagU8,
	"u16":     tagU16,
	"u32":     tagU32,
	"u64":     tagU64,
	"u128":    tagU128,
	"u256":    tagU256,
	"address": tagAddress,
	"signer":  tagSigner,
}

var uintBits = map[uint8]int{
	tagU8:   8,
	tagU16:  16,
	tagU32:  32,
	tagU64:  64,
	tagU128: 128,
	tagU256: 256,
}

// TypeTag is a parsed Move type such as u64, vector<u8> or
// 0x1::object::Object<0x4::token::Token>.
type TypeTag struct {
	kind   uint8
	elem   *TypeTag
	addr   Address
	module string
	name   string
	params []TypeTag
}

// ParseTypeTag parses the text form of a Move type.
func ParseTypeTag(s string) (TypeTag, error) {
	s = strings.TrimSpace(s)
	if kind, ok := primitiveTags[s]; ok {
		return TypeTag{kind: kind}, nil
	}
	base, generics := s, ""
	if i := strings.IndexByte(s, '<'); i >= 0 {
		if !strings.HasSuffix(s, ">") {
			return TypeTag{}, fmt.Errorf("type %q: unbalanced '<': %w", s, ErrUnencodable)
		}
		base, generics = s[:i], s[i+1:len(s)-1]
	}
	if base == "vector" {
		if generics == "" {
			return TypeTag{}, fmt.Errorf("type %q: vector without element type: %w", s, ErrUnencodable)
		}
		elem, err := ParseTypeTag(generics)
		if err != nil {
			return TypeTag{}, err
		}
		return TypeTag{kind: tagVector, elem: &elem}, nil
	}

	parts := strings.Split(base, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return TypeTag{}, fmt.Errorf("type %q: not a struct tag: %w", s, ErrUnencodable)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return TypeTag{}, fmt.Errorf("type %q: %w: %w", s, err, ErrUnencodable)
	}
	tag := TypeTag{kind: tagStruct, addr: addr, module: parts[1], name: parts[2]}
	if generics == "" {
		return tag, nil
	}
	for _, p := range splitGenerics(generics) {
		param, err := ParseTypeTag(p)
		if err != nil {
			return TypeTag{}, err
		}
		tag.params = append(tag.params, param)
	}
	return tag, nil
}

// splitGenerics splits "A, B<C, D>" on the commas outside angle brackets.
func splitGenerics(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// String returns the canonical text form with short framework addresses.
func (t TypeTag) String() string {
	switch t.kind {
	case tagVector:
		return "vector<" + t.elem.String() + ">"
	case tagStruct:
		s := fmt.Sprintf("%s::%s::%s", t.addr.ShortString(), t.module, t.name)
		if len(t.params) == 0 {
			return s
		}
		params := make([]string, len(t.params))
		for i, p := range t.params {
			params[i] = p.String()
		}
		return s + "<" + strings.Join(params, ", ") + ">"
	}
	for name, kind := range primitiveTags {
		if kind == t.kind {
			return name
		}
	}
	return "unknown"
}

func (t TypeTag) is(addr, module, name string) bool {
	return t.kind == tagStruct && t.addr == MustParseAddress(addr) && t.module == module && t.name == name
}

// bcsWriter appends values in BCS, the serialization transactions are
// signed over.
type bcsWriter struct {
	buf []byte
}

func (w *bcsWriter) uleb128(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

func (w *bcsWriter) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *bcsWriter) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// uint writes v little endian in bits/8 bytes.
func (w *bcsWriter) uint(v *big.Int, bits int) {
	be := v.FillBytes(make([]byte, bits/8))
	for i := len(be) - 1; i >= 0; i-- {
		w.buf = append(w.buf, be[i])
	}
}

func (w *bcsWriter) bytes(b []byte) {
	w.uleb128(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *bcsWriter) str(s string) {
	w.bytes([]byte(s))
}

func (w *bcsWriter) address(a Address) {
	w.buf = append(w.buf, a[:]...)
}

func (w *bcsWriter) typeTag(t TypeTag) {
	w.uleb128(uint64(t.kind))
	switch t.kind {
	case tagVector:
		w.typeTag(*t.elem)
	case tagStruct:
		w.address(t.addr)
		w.str(t.module)
		w.str(t.name)
		w.uleb128(uint64(len(t.params)))
		for _, p := range t.params {
			w.typeTag(p)
		}
	}
}

// value writes v, a json style argument, as a value of type t. Integers
// may be strings or numbers, vector<u8> may be a 0x hex string.
func (w *bcsWriter) value(t TypeTag, v any) error {
	switch t.kind {
	case tagBool:
		b, err := argBool(v)
		if err != nil {
			return err
		}
		if b {
			w.u8(1)
		} else {
			w.u8(0)
		}
	case tagU8, tagU16, tagU32, tagU64, tagU128, tagU256:
		n, err := argUint(v, uintBits[t.kind])
		if err != nil {
			return err
		}
		w.uint(n, uintBits[t.kind])
	case tagAddress:
		a, err := argAddress(v)
		if err != nil {
			return err
		}
		w.address(a)
	case tagVector:
		if s, ok := v.(string); ok && t.elem.kind == tagU8 {
			b, err := hexutil.Decode(s)
			if err != nil {
				return fmt.Errorf("vector<u8> %q: %w", s, err)
			}
			w.bytes(b)
			return nil
		}
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%T is not a vector", v)
		}
		w.uleb128(uint64(len(items)))
		for _, item := range items {
			if err := w.value(*t.elem, item); err != nil {
				return err
			}
		}
	case tagStruct:
		switch {
		case t.is("0x1", "string", "String"):
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%T is not a string", v)
			}
			w.str(s)
		case t.is("0x1", "object", "Object"):
			a, err := argAddress(v)
			if err != nil {
				return err
			}
			w.address(a)
		default:
			return fmt.Errorf("arguments of type %s are not supported", t)
		}
	default:
		return fmt.Errorf("arguments of type %s are not supported", t)
	}
	return nil
}

func argBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("%T is not a bool", v)
}

func argUint(v any, bits int) (*big.Int, error) {
	n := new(big.Int)
	switch x := v.(type) {
	case string:
		if _, ok := n.SetString(x, 10); !ok {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
	case json.Number:
		if _, ok := n.SetString(x.String(), 10); !ok {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
	case uint64:
		n.SetUint64(x)
	case int:
		n.SetInt64(int64(x))
	case float64:
		if x != float64(uint64(x)) {
			return nil, fmt.Errorf("%v is not an integer", x)
		}
		n.SetUint64(uint64(x))
	default:
		return nil, fmt.Errorf("%T is not an integer", v)
	}
	if n.Sign() < 0 || n.BitLen() > bits {
		return nil, fmt.Errorf("%s doesn't fit in u%d", n, bits)
	}
	return n, nil
}

func argAddress(v any) (Address, error) {
	switch a := v.(type) {
	case Address:
		return a, nil
	case string:
		return ParseAddress(a)
	}
	return Address{}, fmt.Errorf("%T is not an address", v)
}

func (w *bcsWriter) entryFunction(p *EntryFunctionPayload) error {
	parts := strings.Split(p.Function, "::")
	if len(parts) != 3 {
		return fmt.Errorf("function %q: %w", p.Function, ErrUnencodable)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return fmt.Errorf("function %q: %w: %w", p.Function, err, ErrUnencodable)
	}
	if len(p.ArgumentTypes) != len(p.Arguments) {
		return fmt.Errorf(
			"%s: %d arguments but %d argument types: %w",
			p.Function, len(p.Arguments), len(p.ArgumentTypes), ErrUnencodable,
		)
	}

	w.uleb128(entryFunctionVariant)
	w.address(addr)
	w.str(parts[1])
	w.str(parts[2])

	w.uleb128(uint64(len(p.TypeArguments)))
	for _, s := range p.TypeArguments {
		tag, err := ParseTypeTag(s)
		if err != nil {
			return err
		}
		w.typeTag(tag)
	}

	w.uleb128(uint64(len(p.Arguments)))
	for i, arg := range p.Arguments {
		tag, err := ParseTypeTag(p.ArgumentTypes[i])
		if err != nil {
			return err
		}
		inner := &bcsWriter{}
		if err := inner.value(tag, arg); err != nil {
			return fmt.Errorf("%s argument %d: %s: %w", p.Function, i, err, ErrUnencodable)
		}
		w.bytes(inner.buf)
	}
	return nil
}

// EncodeRawTransaction returns the BCS bytes of raw for the chain chainID.
func EncodeRawTransaction(raw *RawTransaction, chainID uint8) ([]byte, error) {
	if raw == nil || raw.Payload == nil {
		return nil, fmt.Errorf("no payload: %w", ErrUnencodable)
	}
	sender, err := ParseAddress(raw.Sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	var nums [4]uint64
	for i, s := range []string{raw.SequenceNumber, raw.MaxGasAmount, raw.GasUnitPrice, raw.ExpirationTimestampSecs} {
		nums[i], err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %s: %w", s, err, ErrUnencodable)
		}
	}

	w := &bcsWriter{}
	w.address(sender)
	w.u64(nums[0])
	if err := w.entryFunction(raw.Payload); err != nil {
		return nil, err
	}
	w.u64(nums[1])
	w.u64(nums[2])
	w.u64(nums[3])
	w.u8(chainID)
	return w.buf, nil
}

// SigningMessage returns the bytes an account signs to submit raw on the
// chain chainID: the hash of the RawTransaction domain followed by the
// BCS encoding of raw.
func SigningMessage(raw *RawTransaction, chainID uint8) ([]byte, error) {
	encoded, err := EncodeRawTransaction(raw, chainID)
	if err != nil {
		return nil, err
	}
	prefix := sha3.Sum256([]byte(rawTransactionSalt))
	return append(prefix[:], encoded...), nil
}
