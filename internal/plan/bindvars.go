package plan

import (
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// BindVariableNames returns the distinct bind-variable names referenced by
// the tree, in first-seen order. The walk covers every node capable of
// holding a bind reference, including nested constraint leaves. The result is
// stable: the same tree always produces the same set.
func BindVariableNames(t *qom.QueryTree) []string {
	var names []string
	seen := make(map[string]struct{})
	collect := func(op qom.StaticOperand) {
		bv, ok := op.(*qom.BindVariable)
		if !ok {
			return
		}
		if _, dup := seen[bv.Name]; dup {
			return
		}
		seen[bv.Name] = struct{}{}
		names = append(names, bv.Name)
	}
	walkConstraint(t.Constraint(), collect)
	return names
}

// walkConstraint visits every static operand in the constraint tree.
func walkConstraint(c qom.Constraint, visit func(qom.StaticOperand)) {
	switch node := c.(type) {
	case nil:
	case *qom.And:
		walkConstraint(node.Left, visit)
		walkConstraint(node.Right, visit)
	case *qom.Or:
		walkConstraint(node.Left, visit)
		walkConstraint(node.Right, visit)
	case *qom.Not:
		walkConstraint(node.Operand, visit)
	case *qom.Comparison:
		visit(node.Value)
	case *qom.FullTextSearch:
		if node.Expression != nil {
			visit(node.Expression)
		}
	}
}

// ResolveBindValues resolves every discovered name against the supplied
// mapping. A discovered name absent from the mapping fails with an
// UnboundVariable error before any row can be produced. The returned map is
// owned by the execution and holds exactly the discovered names.
func ResolveBindValues(names []string, supplied map[string]value.Value) (map[string]value.Value, error) {
	resolved := make(map[string]value.Value, len(names))
	for _, n := range names {
		v, ok := supplied[n]
		if !ok {
			return nil, newError(CodeUnboundVariable, "no value bound for variable %q", n)
		}
		resolved[n] = v
	}
	return resolved, nil
}
