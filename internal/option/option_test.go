package option

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSchemaValidation(t *testing.T) {
	t.Run("ranged default out of bounds", func(t *testing.T) {
		_, err := RangedInt("n", "count", 1, 10, 11)
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("ranged min greater than max", func(t *testing.T) {
		_, err := RangedFloat("f", "gain", 2, 1, 1.5)
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("ranged float NaN default", func(t *testing.T) {
		_, err := RangedFloat("f", "gain", 0, 1, math.NaN())
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("ranged float NaN bound", func(t *testing.T) {
		_, err := RangedFloat("f", "gain", math.NaN(), 1, 0.5)
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("enumed default choice out of range", func(t *testing.T) {
		_, err := EnumedString("mode", "mode", []string{"a", "b"}, 2)
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("empty enumeration", func(t *testing.T) {
		_, err := EnumedInt("rate", "rate", nil, 0)
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("empty name", func(t *testing.T) {
		_, err := RangedInt("", "x", 0, 1, 0)
		require.ErrorIs(t, err, ErrInvalidSchema)
	})
	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() { MustRangedInt("n", "count", 1, 10, 0) })
	})
}

func TestValuesDefaults(t *testing.T) {
	values := NewValues(
		Int("i", "int", 7),
		Float("f", "float", 0.5),
		String("s", "string", "hello"),
		MustEnumedInt("ei", "enumed int", []int64{44100, 48000, 96000}, 1),
		MustEnumedFloat("ef", "enumed float", []float64{0.25, 0.5}, 0),
		MustEnumedString("es", "enumed string", []string{"exact", "basename"}, 1),
		MustRangedInt("ri", "ranged int", 0, 100, 50),
		MustRangedFloat("rf", "ranged float", -1, 1, 0),
	)

	assert.Equal(t, int64(7), values.Int("i"))
	assert.Equal(t, 0.5, values.Float("f"))
	assert.Equal(t, "hello", values.String("s"))
	assert.Equal(t, int64(48000), values.Int("ei"))
	assert.Equal(t, 0.25, values.Float("ef"))
	assert.Equal(t, "basename", values.String("es"))
	assert.Equal(t, 1, values.Choice("es"))
	assert.Equal(t, int64(50), values.Int("ri"))
	assert.Equal(t, 0.0, values.Float("rf"))
	assert.False(t, values.IsSet("i"))
	assert.Nil(t, values.Get("missing"))
	assert.Equal(t, -1, values.Choice("i"))
}

func TestValuesSetEnforcesDomain(t *testing.T) {
	values := NewValues(
		Int("i", "int", 0),
		String("s", "string", ""),
		MustEnumedString("es", "enumed string", []string{"a", "b", "c"}, 0),
		MustRangedInt("ri", "ranged int", 1, 10, 5),
		MustRangedFloat("rf", "ranged float", 0, 1, 0.5),
	)

	tests := []struct {
		name    string
		option  string
		value   any
		wantErr error
	}{
		{"int accepts int", "i", 3, nil},
		{"int accepts integral float", "i", float64(4), nil},
		{"int rejects fraction", "i", 4.5, ErrKindMismatch},
		{"int rejects string", "i", "4", ErrKindMismatch},
		{"string rejects int", "s", 1, ErrKindMismatch},
		{"ranged int below min", "ri", 0, ErrOutOfRange},
		{"ranged int above max", "ri", 11, ErrOutOfRange},
		{"ranged int at max", "ri", 10, nil},
		{"int rejects float beyond int64", "i", 1e19, ErrKindMismatch},
		{"int rejects float below int64", "i", -1e19, ErrKindMismatch},
		{"int rejects NaN", "i", math.NaN(), ErrKindMismatch},
		{"ranged int rejects float beyond int64", "ri", math.Exp2(63), ErrKindMismatch},
		{"ranged float above max", "rf", 1.01, ErrOutOfRange},
		{"ranged float rejects NaN", "rf", math.NaN(), ErrOutOfRange},
		{"ranged float rejects infinity", "rf", math.Inf(1), ErrOutOfRange},
		{"enum value present", "es", "c", nil},
		{"enum value missing", "es", "z", ErrInvalidChoice},
		{"unknown option", "nope", 1, ErrUnknownOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := values.Set(tt.option, tt.value)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, int64(10), values.Int("ri"))
	assert.Equal(t, int64(4), values.Int("i"))
	assert.Equal(t, 0.5, values.Float("rf"))
	assert.Equal(t, "c", values.String("es"))
	assert.Equal(t, 2, values.Choice("es"))
}

func TestValuesSetChoice(t *testing.T) {
	values := NewValues(
		MustEnumedInt("rate", "sample rate", []int64{44100, 48000}, 0),
		Int("plain", "plain", 0),
	)

	require.NoError(t, values.SetChoice("rate", 1))
	assert.Equal(t, int64(48000), values.Int("rate"))

	require.ErrorIs(t, values.SetChoice("rate", 2), ErrInvalidChoice)
	require.ErrorIs(t, values.SetChoice("rate", -1), ErrInvalidChoice)
	require.ErrorIs(t, values.SetChoice("plain", 0), ErrKindMismatch)
	require.ErrorIs(t, values.SetChoice("nope", 0), ErrUnknownOption)

	values.Reset("rate")
	assert.Equal(t, int64(44100), values.Int("rate"))
}

func TestValuesSetAllKeepsValidEntries(t *testing.T) {
	values := NewValues(
		MustRangedInt("a", "a", 0, 5, 0),
		MustRangedInt("b", "b", 0, 5, 0),
	)

	err := values.SetAll(map[string]any{"a": 3, "b": 9, "c": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, int64(3), values.Int("a"))
	assert.Equal(t, int64(0), values.Int("b"))
}

func TestSpecSerialization(t *testing.T) {
	schema := MustEnumedString("mode", "lookup mode", []string{"exact", "basename"}, 1)

	data, err := json.Marshal(schema.Spec())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "enumed_string", decoded["kind"])
	assert.Equal(t, "basename", decoded["default"])
	assert.Equal(t, []any{"exact", "basename"}, decoded["enumeration"])
	assert.Equal(t, float64(1), decoded["defaultChoice"])

	ranged := MustRangedInt("n", "count", 1, 9, 3).Spec()
	assert.Equal(t, int64(1), ranged.Min)
	assert.Equal(t, int64(9), ranged.Max)
	assert.Nil(t, ranged.DefaultChoice)
}

func TestKindText(t *testing.T) {
	var k Kind
	require.NoError(t, yaml.Unmarshal([]byte("ranged_float"), &k))
	assert.Equal(t, KindRangedFloat, k)

	require.Error(t, k.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "unknown(42)", Kind(42).String())
}

func TestValuesMarshal(t *testing.T) {
	values := NewValues(String("database", "path", "catalog.db"), MustRangedInt("n", "n", 0, 10, 2))
	require.NoError(t, values.Set("n", 4))

	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `{"database":"catalog.db","n":4}`, string(data))

	out, err := yaml.Marshal(values)
	require.NoError(t, err)
	assert.Contains(t, string(out), "database: catalog.db")
}

func TestValuesRejectNaNFromManifest(t *testing.T) {
	values := NewValues(MustRangedFloat("gain", "gain", 0, 1, 0.5))

	var m map[string]any
	require.NoError(t, yaml.Unmarshal([]byte("gain: .nan\n"), &m))

	err := values.SetAll(m)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.False(t, values.IsSet("gain"))
	assert.Equal(t, 0.5, values.Float("gain"))
}
