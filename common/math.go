package common

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	APTDecimals uint64 = 8
	OctasPerAPT uint64 = 100_000_000
)

var numberPrinter = message.NewPrinter(language.English)

// ParseAPT converts a decimal APT amount such as "1.15" to octas without
// going through float64, so 1.15 APT is exactly 115000000 octas.
func ParseAPT(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(APTDecimals) {
		return 0, fmt.Errorf("amount %s has more than %d decimals", value, APTDecimals)
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("amount %s is not a positive decimal number", value)
			}
		}
	}
	digits := whole + frac + strings.Repeat("0", int(APTDecimals)-len(frac))
	octas, ok := new(big.Int).SetString(digits, 10)
	if !ok || !octas.IsUint64() {
		return 0, fmt.Errorf("amount %s is out of range", value)
	}
	return octas.Uint64(), nil
}

// APTToOctas floors apt * 10^8. Prefer ParseAPT for user input.
func APTToOctas(apt float64) uint64 {
	if apt <= 0 {
		return 0
	}
	f := new(big.Float).Mul(big.NewFloat(apt), new(big.Float).SetUint64(OctasPerAPT))
	res, _ := f.Uint64()
	return res
}

// FormatAPT renders octas as APT with exactly precision decimals,
// truncating the rest: FormatAPT(123456789, 4) = "1.2345".
func FormatAPT(octas uint64, precision int) string {
	whole := octas / OctasPerAPT
	frac := fmt.Sprintf("%08d", octas%OctasPerAPT)
	if precision <= 0 {
		return strconv.FormatUint(whole, 10)
	}
	if precision > int(APTDecimals) {
		precision = int(APTDecimals)
	}
	return fmt.Sprintf("%d.%s", whole, frac[:precision])
}

// ReadableOctas returns "1,250,000 octas (0.0125 APT)".
func ReadableOctas(octas uint64) string {
	return fmt.Sprintf(
		"%s octas (%s APT)",
		numberPrinter.Sprintf("%d", octas),
		strings.TrimRight(strings.TrimRight(FormatAPT(octas, int(APTDecimals)), "0"), "."),
	)
}

// ParseOctas parses a decimal u64 as used by the node for amounts and
// sequence numbers.
func ParseOctas(value string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse %q as u64: %w", value, err)
	}
	return v, nil
}
