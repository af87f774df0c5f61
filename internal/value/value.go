package value

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/XenoAmess/jackrabbit/internal/name"
)

// Type identifies the declared type of a property value.
type Type string

// Property value types.
const (
	TypeUndefined Type = "Undefined"
	TypeString    Type = "String"
	TypeBoolean   Type = "Boolean"
	TypeLong      Type = "Long"
	TypeDouble    Type = "Double"
	TypeDecimal   Type = "Decimal"
	TypeDate      Type = "Date"
	TypeName      Type = "Name"
	TypePath      Type = "Path"
	TypeReference Type = "Reference"
)

// A Value is an immutable, typed property value.
type Value struct {
	t   Type
	s   string
	b   bool
	d   decimal.Decimal
	tm  time.Time
	n   name.Name
	p   name.Path
	set bool
}

// String creates a string value.
func String(s string) Value {
	return Value{t: TypeString, s: s, set: true}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{t: TypeBoolean, b: b, set: true}
}

// Long creates a long (64-bit integer) value.
func Long(i int64) Value {
	return Value{t: TypeLong, d: decimal.NewFromInt(i), set: true}
}

// Double creates a double value.
func Double(f float64) Value {
	return Value{t: TypeDouble, d: decimal.NewFromFloat(f), set: true}
}

// Decimal creates an arbitrary-precision decimal value.
func Decimal(d decimal.Decimal) Value {
	return Value{t: TypeDecimal, d: d, set: true}
}

// Date creates a date value.
func Date(t time.Time) Value {
	return Value{t: TypeDate, tm: t, set: true}
}

// NameValue creates a name value.
func NameValue(n name.Name) Value {
	return Value{t: TypeName, n: n, set: true}
}

// PathValue creates a path value.
func PathValue(p name.Path) Value {
	return Value{t: TypePath, p: p, set: true}
}

// Reference creates a reference value holding a node identifier.
func Reference(id string) Value {
	return Value{t: TypeReference, s: id, set: true}
}

// Type returns the value's type, or TypeUndefined for the zero Value.
func (v Value) Type() Type {
	if !v.set {
		return TypeUndefined
	}
	return v.t
}

// IsSet reports whether the value holds anything. The zero Value is unset.
func (v Value) IsSet() bool {
	return v.set
}

// IsNumeric reports whether the value is long, double or decimal.
func (v Value) IsNumeric() bool {
	return v.t == TypeLong || v.t == TypeDouble || v.t == TypeDecimal
}

// Text returns the string representation of the value, following the
// conversion rules for property values: numerics render in canonical decimal
// form, dates in RFC 3339, booleans as "true"/"false".
func (v Value) Text() string {
	switch v.t {
	case TypeString, TypeReference:
		return v.s
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeLong, TypeDouble, TypeDecimal:
		return v.d.String()
	case TypeDate:
		return v.tm.UTC().Format(time.RFC3339Nano)
	case TypeName:
		return v.n.String()
	case TypePath:
		return v.p.String()
	default:
		return ""
	}
}

// Bool returns the boolean value.
func (v Value) Bool() (bool, error) {
	switch v.t {
	case TypeBoolean:
		return v.b, nil
	case TypeString:
		return strconv.ParseBool(v.s)
	default:
		return false, fmt.Errorf("cannot convert %s value to boolean", v.t)
	}
}

// Long returns the value as an int64.
func (v Value) Long() (int64, error) {
	switch v.t {
	case TypeLong, TypeDouble, TypeDecimal:
		return v.d.IntPart(), nil
	case TypeString:
		return strconv.ParseInt(v.s, 10, 64)
	case TypeDate:
		return v.tm.UnixMilli(), nil
	default:
		return 0, fmt.Errorf("cannot convert %s value to long", v.t)
	}
}

// Double returns the value as a float64.
func (v Value) Double() (float64, error) {
	switch v.t {
	case TypeLong, TypeDouble, TypeDecimal:
		f, _ := v.d.Float64()
		return f, nil
	case TypeString:
		return strconv.ParseFloat(v.s, 64)
	default:
		return 0, fmt.Errorf("cannot convert %s value to double", v.t)
	}
}

// DecimalValue returns the value as a decimal.
func (v Value) DecimalValue() (decimal.Decimal, error) {
	switch v.t {
	case TypeLong, TypeDouble, TypeDecimal:
		return v.d, nil
	case TypeString:
		return decimal.NewFromString(v.s)
	case TypeDate:
		return decimal.NewFromInt(v.tm.UnixMilli()), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("cannot convert %s value to decimal", v.t)
	}
}

// Time returns the value as a time.
func (v Value) Time() (time.Time, error) {
	switch v.t {
	case TypeDate:
		return v.tm, nil
	case TypeString:
		return time.Parse(time.RFC3339Nano, v.s)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %s value to date", v.t)
	}
}

// NameVal returns the value as a Name.
func (v Value) NameVal() (name.Name, error) {
	switch v.t {
	case TypeName:
		return v.n, nil
	case TypeString:
		return name.Parse(v.s)
	default:
		return name.Name{}, fmt.Errorf("cannot convert %s value to name", v.t)
	}
}

// PathVal returns the value as a Path.
func (v Value) PathVal() (name.Path, error) {
	switch v.t {
	case TypePath:
		return v.p, nil
	case TypeString:
		return name.ParsePath(v.s)
	default:
		return name.Path{}, fmt.Errorf("cannot convert %s value to path", v.t)
	}
}

// Key returns a canonical, type-prefixed encoding of the value suitable for
// hash-join and cache keys. Equal values per Compare produce equal keys within
// a type family.
func (v Value) Key() string {
	switch {
	case v.IsNumeric():
		return "n:" + v.d.String()
	case v.t == TypeDate:
		return "d:" + v.tm.UTC().Format(time.RFC3339Nano)
	case v.t == TypeBoolean:
		return "b:" + strconv.FormatBool(v.b)
	default:
		return "s:" + v.Text()
	}
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	if !v.set {
		return "<unset>"
	}
	return fmt.Sprintf("%s(%s)", v.t, v.Text())
}
