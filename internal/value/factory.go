package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/XenoAmess/jackrabbit/internal/name"
)

// Factory creates Values from Go literals and converts values between
// declared property types. A Factory is stateless and safe for concurrent
// use; the zero value is ready to use.
type Factory struct{}

// NewFactory returns a value factory.
func NewFactory() *Factory {
	return &Factory{}
}

// FromLiteral converts a Go literal into a Value.
func (f *Factory) FromLiteral(v interface{}) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Boolean(x), nil
	case int:
		return Long(int64(x)), nil
	case int32:
		return Long(int64(x)), nil
	case int64:
		return Long(x), nil
	case float32:
		return Double(float64(x)), nil
	case float64:
		return Double(x), nil
	case decimal.Decimal:
		return Decimal(x), nil
	case time.Time:
		return Date(x), nil
	case name.Name:
		return NameValue(x), nil
	case name.Path:
		return PathValue(x), nil
	default:
		return Value{}, fmt.Errorf("cannot create value from %T literal", v)
	}
}

// Coerce converts v to the declared type t, following the property value
// conversion rules. Coercing to TypeUndefined returns v unchanged.
func (f *Factory) Coerce(v Value, t Type) (Value, error) {
	if t == TypeUndefined || v.Type() == t {
		return v, nil
	}
	switch t {
	case TypeString:
		return String(v.Text()), nil
	case TypeBoolean:
		b, err := v.Bool()
		if err != nil {
			return Value{}, err
		}
		return Boolean(b), nil
	case TypeLong:
		i, err := v.Long()
		if err != nil {
			return Value{}, err
		}
		return Long(i), nil
	case TypeDouble:
		d, err := v.Double()
		if err != nil {
			return Value{}, err
		}
		return Double(d), nil
	case TypeDecimal:
		d, err := v.DecimalValue()
		if err != nil {
			return Value{}, err
		}
		return Decimal(d), nil
	case TypeDate:
		tm, err := v.Time()
		if err != nil {
			return Value{}, err
		}
		return Date(tm), nil
	case TypeName:
		n, err := v.NameVal()
		if err != nil {
			return Value{}, err
		}
		return NameValue(n), nil
	case TypePath:
		p, err := v.PathVal()
		if err != nil {
			return Value{}, err
		}
		return PathValue(p), nil
	case TypeReference:
		return Reference(v.Text()), nil
	default:
		return Value{}, fmt.Errorf("cannot coerce %s value to %s", v.Type(), t)
	}
}
