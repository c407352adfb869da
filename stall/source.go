package stall

import "fmt"

// Source tells where a resolved stall address came from.
type Source uint8

const (
	SourceUnknown Source = iota
	// SourceEventData is the stall_addr emitted by the chain.
	SourceEventData
	// SourceDerived is computed locally from owner and seed.
	SourceDerived
	// SourceFallbackOwner is the owner address, used when derivation failed.
	SourceFallbackOwner
)

var sourceNames = map[Source]string{
	SourceEventData:     "event_data",
	SourceDerived:       "derived",
	SourceFallbackOwner: "fallback_owner",
}

func (s Source) String() string {
	if name, found := sourceNames[s]; found {
		return name
	}
	return "unknown"
}

// Degraded reports whether the address is a guess that may not be a stall.
func (s Source) Degraded() bool {
	return s == SourceFallbackOwner || s == SourceUnknown
}

func ParseSource(name string) (Source, error) {
	for s, n := range sourceNames {
		if n == name {
			return s, nil
		}
	}
	return SourceUnknown, fmt.Errorf("unknown stall address source %q", name)
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(b []byte) error {
	parsed, err := ParseSource(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
