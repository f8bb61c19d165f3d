package option

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidSchema is returned when a schema's own default violates its domain.
	ErrInvalidSchema = errors.New("invalid option schema")
	// ErrUnknownOption is returned when a value names no schema.
	ErrUnknownOption = errors.New("unknown option")
	// ErrKindMismatch is returned when a value has the wrong type for its schema.
	ErrKindMismatch = errors.New("option kind mismatch")
	// ErrOutOfRange is returned when a ranged value falls outside [Min, Max].
	ErrOutOfRange = errors.New("option value out of range")
	// ErrInvalidChoice is returned when an enumerated choice is not in the enumeration.
	ErrInvalidChoice = errors.New("invalid option choice")
)

// Schema is the immutable description of a single option.
// The zero value is not usable; build schemas with the constructors below.
type Schema struct {
	name string
	desc string
	kind Kind

	defInt    int64
	defFloat  float64
	defString string

	enumInts    []int64
	enumFloats  []float64
	enumStrings []string
	defChoice   int

	minInt, maxInt     int64
	minFloat, maxFloat float64
}

// Name returns the option name.
func (s Schema) Name() string { return s.name }

// Description returns the human-readable description.
func (s Schema) Description() string { return s.desc }

// Kind returns the variant.
func (s Schema) Kind() Kind { return s.kind }

// Int returns a plain integer option.
func Int(name, desc string, def int64) Schema {
	return Schema{name: name, desc: desc, kind: KindInt, defInt: def}
}

// Float returns a plain floating point option.
func Float(name, desc string, def float64) Schema {
	return Schema{name: name, desc: desc, kind: KindFloat, defFloat: def}
}

// String returns a plain string option.
func String(name, desc, def string) Schema {
	return Schema{name: name, desc: desc, kind: KindString, defString: def}
}

// EnumedInt returns an option whose value is chosen from values.
func EnumedInt(name, desc string, values []int64, defaultChoice int) (Schema, error) {
	s := Schema{name: name, desc: desc, kind: KindEnumedInt, enumInts: slices.Clone(values), defChoice: defaultChoice}
	return s, s.validate()
}

// EnumedFloat returns an option whose value is chosen from values.
func EnumedFloat(name, desc string, values []float64, defaultChoice int) (Schema, error) {
	s := Schema{name: name, desc: desc, kind: KindEnumedFloat, enumFloats: slices.Clone(values), defChoice: defaultChoice}
	return s, s.validate()
}

// EnumedString returns an option whose value is chosen from values.
func EnumedString(name, desc string, values []string, defaultChoice int) (Schema, error) {
	s := Schema{name: name, desc: desc, kind: KindEnumedString, enumStrings: slices.Clone(values), defChoice: defaultChoice}
	return s, s.validate()
}

// RangedInt returns an integer option bounded by [minVal, maxVal].
func RangedInt(name, desc string, minVal, maxVal, def int64) (Schema, error) {
	s := Schema{name: name, desc: desc, kind: KindRangedInt, minInt: minVal, maxInt: maxVal, defInt: def}
	return s, s.validate()
}

// RangedFloat returns a floating point option bounded by [minVal, maxVal].
func RangedFloat(name, desc string, minVal, maxVal, def float64) (Schema, error) {
	s := Schema{name: name, desc: desc, kind: KindRangedFloat, minFloat: minVal, maxFloat: maxVal, defFloat: def}
	return s, s.validate()
}

// MustEnumedInt is like EnumedInt but panics on an invalid schema.
func MustEnumedInt(name, desc string, values []int64, defaultChoice int) Schema {
	return must(EnumedInt(name, desc, values, defaultChoice))
}

// MustEnumedFloat is like EnumedFloat but panics on an invalid schema.
func MustEnumedFloat(name, desc string, values []float64, defaultChoice int) Schema {
	return must(EnumedFloat(name, desc, values, defaultChoice))
}

// MustEnumedString is like EnumedString but panics on an invalid schema.
func MustEnumedString(name, desc string, values []string, defaultChoice int) Schema {
	return must(EnumedString(name, desc, values, defaultChoice))
}

// MustRangedInt is like RangedInt but panics on an invalid schema.
func MustRangedInt(name, desc string, minVal, maxVal, def int64) Schema {
	return must(RangedInt(name, desc, minVal, maxVal, def))
}

// MustRangedFloat is like RangedFloat but panics on an invalid schema.
func MustRangedFloat(name, desc string, minVal, maxVal, def float64) Schema {
	return must(RangedFloat(name, desc, minVal, maxVal, def))
}

func must(s Schema, err error) Schema {
	if err != nil {
		panic(err)
	}
	return s
}

func (s Schema) validate() error {
	if s.name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSchema)
	}
	switch s.kind {
	case KindEnumedInt, KindEnumedFloat, KindEnumedString:
		if s.defChoice < 0 || s.defChoice >= s.choices() {
			return fmt.Errorf("%w: %s: default choice %d not in [0, %d)", ErrInvalidSchema, s.name, s.defChoice, s.choices())
		}
	case KindRangedInt:
		if s.minInt > s.maxInt {
			return fmt.Errorf("%w: %s: min %d > max %d", ErrInvalidSchema, s.name, s.minInt, s.maxInt)
		}
		if s.defInt < s.minInt || s.defInt > s.maxInt {
			return fmt.Errorf("%w: %s: default %d not in [%d, %d]", ErrInvalidSchema, s.name, s.defInt, s.minInt, s.maxInt)
		}
	case KindRangedFloat:
		if !(s.minFloat <= s.maxFloat) {
			return fmt.Errorf("%w: %s: bounds [%g, %g] are not ordered", ErrInvalidSchema, s.name, s.minFloat, s.maxFloat)
		}
		if !s.inFloatRange(s.defFloat) {
			return fmt.Errorf("%w: %s: default %g not in [%g, %g]", ErrInvalidSchema, s.name, s.defFloat, s.minFloat, s.maxFloat)
		}
	}
	return nil
}

// inFloatRange reports whether f lies within the ranged float bounds. NaN
// never does.
func (s Schema) inFloatRange(f float64) bool {
	return f >= s.minFloat && f <= s.maxFloat
}

// choices returns the enumeration length for enumerated kinds.
func (s Schema) choices() int {
	switch s.kind {
	case KindEnumedInt:
		return len(s.enumInts)
	case KindEnumedFloat:
		return len(s.enumFloats)
	case KindEnumedString:
		return len(s.enumStrings)
	}
	return 0
}

// Default returns the default value as int64, float64 or string depending on
// the kind. Enumerated kinds return the enumerated value at the default choice.
func (s Schema) Default() any {
	if s.kind.IsEnumed() {
		return s.valueAt(s.defChoice)
	}
	switch s.kind {
	case KindInt, KindRangedInt:
		return s.defInt
	case KindFloat, KindRangedFloat:
		return s.defFloat
	case KindString:
		return s.defString
	}
	return nil
}

func (s Schema) valueAt(choice int) any {
	switch s.kind {
	case KindEnumedInt:
		return s.enumInts[choice]
	case KindEnumedFloat:
		return s.enumFloats[choice]
	case KindEnumedString:
		return s.enumStrings[choice]
	}
	return nil
}

// indexOf returns the choice index of an enumerated value, or -1.
func (s Schema) indexOf(v any) int {
	switch s.kind {
	case KindEnumedInt:
		if n, ok := toInt64(v); ok {
			return slices.Index(s.enumInts, n)
		}
	case KindEnumedFloat:
		if f, ok := toFloat64(v); ok {
			return slices.Index(s.enumFloats, f)
		}
	case KindEnumedString:
		if str, ok := v.(string); ok {
			return slices.Index(s.enumStrings, str)
		}
	}
	return -1
}

// Spec is the plain-data form of a Schema.
type Spec struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	Kind          Kind   `json:"kind" yaml:"kind"`
	Default       any    `json:"default" yaml:"default"`
	Enumeration   []any  `json:"enumeration,omitempty" yaml:"enumeration,omitempty"`
	DefaultChoice *int   `json:"defaultChoice,omitempty" yaml:"default_choice,omitempty"`
	Min           any    `json:"min,omitempty" yaml:"min,omitempty"`
	Max           any    `json:"max,omitempty" yaml:"max,omitempty"`
}

// Spec returns the serializable description of the schema.
func (s Schema) Spec() Spec {
	spec := Spec{
		Name:        s.name,
		Description: s.desc,
		Kind:        s.kind,
		Default:     s.Default(),
	}
	if s.kind.IsEnumed() {
		for i := 0; i < s.choices(); i++ {
			spec.Enumeration = append(spec.Enumeration, s.valueAt(i))
		}
		choice := s.defChoice
		spec.DefaultChoice = &choice
	}
	switch s.kind {
	case KindRangedInt:
		spec.Min, spec.Max = s.minInt, s.maxInt
	case KindRangedFloat:
		spec.Min, spec.Max = s.minFloat, s.maxFloat
	}
	return spec
}
