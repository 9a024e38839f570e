package quiz

import (
	"fmt"
	"strings"
)

// TypeKey identifies one of the eight archetypes. Bit 2 is the E/I axis,
// bit 1 the L/F axis and bit 0 the A/C axis; a set bit selects the
// second-listed dimension.
type TypeKey uint8

const (
	TypeELA TypeKey = iota
	TypeELC
	TypeEFA
	TypeEFC
	TypeILA
	TypeILC
	TypeIFA
	TypeIFC

	typeKeyCount
)

// String returns the three-letter code, e.g. "ELA".
func (k TypeKey) String() string {
	if k >= typeKeyCount {
		return fmt.Sprintf("TypeKey(%d)", uint8(k))
	}
	var b strings.Builder
	for i, pair := range axisPairs {
		bit := (k >> (len(axisPairs) - 1 - i)) & 1
		b.WriteString(string(pair[bit]))
	}
	return b.String()
}

// Valid reports whether k is one of the eight defined keys.
func (k TypeKey) Valid() bool {
	return k < typeKeyCount
}

// MarshalText encodes the key as its code so results serialize readably.
func (k TypeKey) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid type key %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a three-letter code.
func (k *TypeKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseTypeKey parses a code such as "ifc" or "ELA".
func ParseTypeKey(code string) (TypeKey, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != len(axisPairs) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, code)
	}

	var key TypeKey
	for i, pair := range axisPairs {
		switch Dimension(code[i : i+1]) {
		case pair[0]:
		case pair[1]:
			key |= 1 << (len(axisPairs) - 1 - i)
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownType, code)
		}
	}
	return key, nil
}

// AllTypes lists every key in enumeration order.
func AllTypes() []TypeKey {
	out := make([]TypeKey, 0, typeKeyCount)
	for k := TypeKey(0); k < typeKeyCount; k++ {
		out = append(out, k)
	}
	return out
}
