package option

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Values holds user choices for a fixed set of schemas. It is safe for
// concurrent use.
type Values struct {
	mu      sync.RWMutex
	order   []string
	schemas map[string]Schema
	// user holds int64, float64 or string for plain and ranged kinds, and
	// the chosen index (int) for enumerated kinds.
	user map[string]any
}

// NewValues returns an empty store for schemas. Later schemas with a
// duplicate name replace earlier ones.
func NewValues(schemas ...Schema) *Values {
	v := &Values{
		schemas: make(map[string]Schema, len(schemas)),
		user:    make(map[string]any),
	}
	for _, s := range schemas {
		if _, exists := v.schemas[s.name]; !exists {
			v.order = append(v.order, s.name)
		}
		v.schemas[s.name] = s
	}
	return v
}

// Schemas returns the schemas in declaration order.
func (v *Values) Schemas() []Schema {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]Schema, 0, len(v.order))
	for _, name := range v.order {
		out = append(out, v.schemas[name])
	}
	return out
}

// Set stores a user value. For enumerated kinds the value is looked up in
// the enumeration; use SetChoice to pass an index directly.
func (v *Values) Set(name string, value any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	if s.kind.IsEnumed() {
		idx := s.indexOf(value)
		if idx < 0 {
			return fmt.Errorf("%w: %s: %v is not one of %v", ErrInvalidChoice, name, value, s.Spec().Enumeration)
		}
		v.user[name] = idx
		return nil
	}

	switch s.kind {
	case KindInt:
		n, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("%w: %s expects an integer, got %T", ErrKindMismatch, name, value)
		}
		v.user[name] = n
	case KindRangedInt:
		n, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("%w: %s expects an integer, got %T", ErrKindMismatch, name, value)
		}
		if n < s.minInt || n > s.maxInt {
			return fmt.Errorf("%w: %s: %d not in [%d, %d]", ErrOutOfRange, name, n, s.minInt, s.maxInt)
		}
		v.user[name] = n
	case KindFloat:
		f, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%w: %s expects a number, got %T", ErrKindMismatch, name, value)
		}
		v.user[name] = f
	case KindRangedFloat:
		f, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%w: %s expects a number, got %T", ErrKindMismatch, name, value)
		}
		if !s.inFloatRange(f) {
			return fmt.Errorf("%w: %s: %g not in [%g, %g]", ErrOutOfRange, name, f, s.minFloat, s.maxFloat)
		}
		v.user[name] = f
	case KindString:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrKindMismatch, name, value)
		}
		v.user[name] = str
	default:
		return fmt.Errorf("%w: %s has kind %s", ErrKindMismatch, name, s.kind)
	}
	return nil
}

// SetChoice stores the chosen index of an enumerated option.
func (v *Values) SetChoice(name string, choice int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	if !s.kind.IsEnumed() {
		return fmt.Errorf("%w: %s is not enumerated", ErrKindMismatch, name)
	}
	if choice < 0 || choice >= s.choices() {
		return fmt.Errorf("%w: %s: choice %d not in [0, %d)", ErrInvalidChoice, name, choice, s.choices())
	}
	v.user[name] = choice
	return nil
}

// SetAll applies every entry of m and returns all failures joined.
// Valid entries are applied even when others fail.
func (v *Values) SetAll(m map[string]any) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := v.Set(name, m[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset drops the user value so the default applies again.
func (v *Values) Reset(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.user, name)
}

// IsSet reports whether a user value overrides the default.
func (v *Values) IsSet(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.user[name]
	return ok
}

// Get returns the effective value: the user value if set, otherwise the
// default. Enumerated kinds resolve to the enumerated value. Unknown names
// return nil.
func (v *Values) Get(name string) any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.get(name)
}

func (v *Values) get(name string) any {
	s, ok := v.schemas[name]
	if !ok {
		return nil
	}
	u, set := v.user[name]
	if !set {
		return s.Default()
	}
	if s.kind.IsEnumed() {
		return s.valueAt(u.(int))
	}
	return u
}

// Choice returns the effective choice index of an enumerated option, or -1.
func (v *Values) Choice(name string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.schemas[name]
	if !ok || !s.kind.IsEnumed() {
		return -1
	}
	if u, set := v.user[name]; set {
		return u.(int)
	}
	return s.defChoice
}

// Int returns the effective value as int64, or 0 if it is not an integer.
func (v *Values) Int(name string) int64 {
	n, _ := toInt64(v.Get(name))
	return n
}

// Float returns the effective value as float64, or 0 if it is not numeric.
func (v *Values) Float(name string) float64 {
	f, _ := toFloat64(v.Get(name))
	return f
}

// String returns the effective value as a string, or "" if it is not one.
func (v *Values) String(name string) string {
	s, _ := v.Get(name).(string)
	return s
}

// Snapshot returns every effective value keyed by name.
func (v *Values) Snapshot() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make(map[string]any, len(v.order))
	for _, name := range v.order {
		out[name] = v.get(name)
	}
	return out
}

// MarshalJSON encodes the effective values.
func (v *Values) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Snapshot())
}

// MarshalYAML encodes the effective values.
func (v *Values) MarshalYAML() (any, error) {
	return v.Snapshot(), nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		// JSON numbers decode as float64.
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
