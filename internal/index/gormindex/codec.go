package gormindex

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// decodeValue reconstructs a typed value from its persisted type tag and
// canonical text form (the inverse of value.Value.Text).
func decodeValue(typeTag, text string) (value.Value, error) {
	switch value.Type(typeTag) {
	case value.TypeString:
		return value.String(text), nil
	case value.TypeBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt boolean %q: %w", text, err)
		}
		return value.Boolean(b), nil
	case value.TypeLong:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt long %q: %w", text, err)
		}
		return value.Long(i), nil
	case value.TypeDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt double %q: %w", text, err)
		}
		return value.Double(f), nil
	case value.TypeDecimal:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt decimal %q: %w", text, err)
		}
		return value.Decimal(d), nil
	case value.TypeDate:
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt date %q: %w", text, err)
		}
		return value.Date(t), nil
	case value.TypeName:
		n, err := name.Parse(text)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt name %q: %w", text, err)
		}
		return value.NameValue(n), nil
	case value.TypePath:
		p, err := name.ParsePath(text)
		if err != nil {
			return value.Value{}, fmt.Errorf("corrupt path %q: %w", text, err)
		}
		return value.PathValue(p), nil
	case value.TypeReference:
		return value.Reference(text), nil
	default:
		return value.Value{}, fmt.Errorf("unknown property type %q", typeTag)
	}
}
