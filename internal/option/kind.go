package option

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of an option.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindEnumedInt
	KindEnumedFloat
	KindEnumedString
	KindRangedInt
	KindRangedFloat
)

var kindNames = map[Kind]string{
	KindNone:         "none",
	KindInt:          "int",
	KindFloat:        "float",
	KindString:       "string",
	KindEnumedInt:    "enumed_int",
	KindEnumedFloat:  "enumed_float",
	KindEnumedString: "enumed_string",
	KindRangedInt:    "ranged_int",
	KindRangedFloat:  "ranged_float",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// IsEnumed reports whether the kind stores a choice index.
func (k Kind) IsEnumed() bool {
	return k == KindEnumedInt || k == KindEnumedFloat || k == KindEnumedString
}

// IsRanged reports whether the kind carries inclusive bounds.
func (k Kind) IsRanged() bool {
	return k == KindRangedInt || k == KindRangedFloat
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, n := range kindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown option kind %q", ErrInvalidSchema, name)
}
