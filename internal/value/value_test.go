package value

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XenoAmess/jackrabbit/internal/name"
)

func TestText(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	dec, err := decimal.NewFromString("10.50")
	require.NoError(t, err)

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string", String("hello"), "hello"},
		{"boolean", Boolean(true), "true"},
		{"long", Long(42), "42"},
		{"double", Double(2.5), "2.5"},
		{"decimal keeps scale", Decimal(dec), "10.5"},
		{"date rfc3339", Date(when), "2024-03-01T12:30:00Z"},
		{"name expanded", NameValue(name.New("http://ns", "title")), "{http://ns}title"},
		{"path", PathValue(name.NewPath(name.Local("a"), name.Local("b"))), "/a/b"},
		{"unset", Value{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Text())
		})
	}
}

func TestTypeAndIsSet(t *testing.T) {
	assert.Equal(t, TypeUndefined, Value{}.Type())
	assert.False(t, Value{}.IsSet())
	assert.Equal(t, TypeLong, Long(1).Type())
	assert.True(t, Long(1).IsSet())
	assert.True(t, Double(1).IsNumeric())
	assert.False(t, String("1").IsNumeric())
}

func TestCompareNumericAcrossKinds(t *testing.T) {
	dec, err := decimal.NewFromString("3.0")
	require.NoError(t, err)

	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"long vs long", Long(2), Long(3), -1},
		{"long vs double equal", Long(3), Double(3.0), 0},
		{"double vs decimal equal", Double(3.0), Decimal(dec), 0},
		{"decimal precision", Decimal(decimal.NewFromFloat(0.1)), Decimal(decimal.NewFromFloat(0.2)), -1},
		{"big longs", Long(1 << 60), Long(1<<60 - 1), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compare(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompareDatesAndBooleans(t *testing.T) {
	early := Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	got, err := Compare(early, late)
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	got, err = Compare(Boolean(false), Boolean(true))
	require.NoError(t, err)
	assert.Equal(t, -1, got, "false orders before true")

	got, err = Compare(Boolean(true), Boolean(true))
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestCompareCrossTypeFallsBackToText(t *testing.T) {
	got, err := Compare(String("10"), Long(9))
	require.NoError(t, err)
	assert.Equal(t, -1, got, "mixed string/number compares lexically: \"10\" < \"9\"")
}

func TestCompareUnsetFails(t *testing.T) {
	_, err := Compare(Value{}, Long(1))
	assert.Error(t, err)
}

func TestLike(t *testing.T) {
	tests := []struct {
		s       string
		pattern string
		want    bool
	}{
		{"hello", "hello", true},
		{"hello", "h%", true},
		{"hello", "%llo", true},
		{"hello", "%ell%", true},
		{"hello", "h_llo", true},
		{"hello", "h__lo", false},
		{"hello", "_", false},
		{"h", "_", true},
		{"", "%", true},
		{"", "", true},
		{"abc", "%%%", true},
		{"100%", `100\%`, true},
		{"1000", `100\%`, false},
		{"a_b", `a\_b`, true},
		{"axb", `a\_b`, false},
		{"über", "üb__", true},
	}
	for _, tc := range tests {
		t.Run(tc.s+"~"+tc.pattern, func(t *testing.T) {
			assert.Equal(t, tc.want, Like(tc.s, tc.pattern), "Like(%q, %q)", tc.s, tc.pattern)
		})
	}
}

func TestKeyCanonicalWithinTypeFamily(t *testing.T) {
	assert.Equal(t, Long(3).Key(), Double(3.0).Key(), "equal numerics share a key")
	assert.NotEqual(t, Long(3).Key(), String("3").Key(), "keys are type-prefixed")
	assert.Equal(t, "b:true", Boolean(true).Key())

	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	plusOne := utc.In(time.FixedZone("CET", 3600))
	assert.Equal(t, Date(utc).Key(), Date(plusOne).Key(), "date keys normalize to UTC")
}

func TestFromLiteral(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		name     string
		literal  interface{}
		wantType Type
		wantText string
	}{
		{"string", "x", TypeString, "x"},
		{"bool", true, TypeBoolean, "true"},
		{"int", 7, TypeLong, "7"},
		{"int64", int64(7), TypeLong, "7"},
		{"float64", 1.5, TypeDouble, "1.5"},
		{"decimal", decimal.NewFromInt(9), TypeDecimal, "9"},
		{"name", name.Local("n"), TypeName, "n"},
		{"value passes through", Long(1), TypeLong, "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := f.FromLiteral(tc.literal)
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, v.Type())
			assert.Equal(t, tc.wantText, v.Text())
		})
	}

	_, err := f.FromLiteral(struct{}{})
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	f := NewFactory()

	t.Run("string to long", func(t *testing.T) {
		v, err := f.Coerce(String("42"), TypeLong)
		require.NoError(t, err)
		assert.Equal(t, TypeLong, v.Type())
		assert.Equal(t, "42", v.Text())
	})

	t.Run("long to string", func(t *testing.T) {
		v, err := f.Coerce(Long(42), TypeString)
		require.NoError(t, err)
		assert.Equal(t, TypeString, v.Type())
	})

	t.Run("string to date", func(t *testing.T) {
		v, err := f.Coerce(String("2024-03-01T12:30:00Z"), TypeDate)
		require.NoError(t, err)
		assert.Equal(t, TypeDate, v.Type())
	})

	t.Run("unparseable fails", func(t *testing.T) {
		_, err := f.Coerce(String("not a number"), TypeLong)
		assert.Error(t, err)
	})

	t.Run("undefined target is identity", func(t *testing.T) {
		v, err := f.Coerce(String("x"), TypeUndefined)
		require.NoError(t, err)
		assert.Equal(t, String("x"), v)
	})

	t.Run("same type is identity", func(t *testing.T) {
		v, err := f.Coerce(Long(1), TypeLong)
		require.NoError(t, err)
		assert.Equal(t, Long(1), v)
	})
}
