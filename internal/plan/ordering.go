package plan

import (
	"context"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// SortKey is one compiled ordering: an extractor producing the sortable value
// of a candidate row and the requested direction. Keys apply as successive
// tie-breakers in list order.
type SortKey struct {
	// Extract returns the candidate's key value. The bool result is false
	// when the candidate has no value for this key; such candidates sort
	// before candidates with a value (ascending).
	Extract    func(ctx context.Context, row index.Row) (value.Value, bool, error)
	Descending bool
}

// CompileOrderings lowers each ordering spec to a sort key, in precedence
// order. Only direct property-value operands are supported; any other operand
// kind fails with UnsupportedOrderingOperand naming the operand. Execution
// never silently ignores an unsupported ordering.
func CompileOrderings(orderings []qom.Ordering, svc index.Services) ([]SortKey, error) {
	keys := make([]SortKey, 0, len(orderings))
	for _, o := range orderings {
		pv, ok := o.Operand.(*qom.PropertyValue)
		if !ok {
			return nil, newError(CodeUnsupportedOrderingOperand,
				"order by %T not yet implemented", o.Operand)
		}
		keys = append(keys, SortKey{
			Extract:    propertyExtractor(svc, pv),
			Descending: o.Descending,
		})
	}
	return keys, nil
}

func propertyExtractor(svc index.Services, pv *qom.PropertyValue) func(context.Context, index.Row) (value.Value, bool, error) {
	return func(ctx context.Context, row index.Row) (value.Value, bool, error) {
		id, bound := row.Node(pv.SelectorName)
		if !bound {
			return value.Value{}, false, nil
		}
		v, ok, err := svc.Reader.Property(ctx, id, pv.PropertyName)
		if err != nil {
			return value.Value{}, false, indexFailure(err)
		}
		return v, ok, nil
	}
}

// compareKeys orders two extracted key values under the collation of the
// sort-key provider. Absent values order before present ones.
func compareKeys(svc index.Services, a value.Value, aOK bool, b value.Value, bOK bool) int {
	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return -1
	case !bOK:
		return 1
	}
	if a.Type() == value.TypeString && b.Type() == value.TypeString {
		ka := svc.SortKeys.CollationKey(a.Text())
		kb := svc.SortKeys.CollationKey(b.Text())
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	}
	cmp, err := value.Compare(a, b)
	if err != nil {
		return 0
	}
	return cmp
}
