package plan

import (
	"context"
	"strings"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// Predicate is a compiled filter over a candidate row. Combining a predicate
// with a base query narrows the base query's candidate set: a row is included
// iff it belongs to the base query and the predicate holds.
type Predicate func(ctx context.Context, row index.Row) (bool, error)

// CompileConstraint recursively lowers a constraint tree into a predicate,
// given the resolved bind values, the declared selectors, the query factory
// (for predicates requiring index services) and the value factory for literal
// coercion. Unsupported constraint or operand kinds fail with
// UnsupportedConstraint naming the kind; callers never get a guessed
// fallback semantic.
func CompileConstraint(c qom.Constraint, bindValues map[string]value.Value,
	selectors map[string]*qom.Selector, f *QueryFactory, vf *value.Factory) (Predicate, error) {

	cc := &constraintCompiler{
		bindValues: bindValues,
		selectors:  selectors,
		svc:        f.Services(),
		values:     vf,
	}
	return cc.compile(c)
}

type constraintCompiler struct {
	bindValues map[string]value.Value
	selectors  map[string]*qom.Selector
	svc        index.Services
	values     *value.Factory
}

func (cc *constraintCompiler) compile(c qom.Constraint) (Predicate, error) {
	switch node := c.(type) {
	case *qom.And:
		return cc.compileAnd(node)
	case *qom.Or:
		return cc.compileOr(node)
	case *qom.Not:
		return cc.compileNot(node)
	case *qom.Comparison:
		return cc.compileComparison(node)
	case *qom.PropertyExistence:
		return cc.compilePropertyExistence(node)
	case *qom.FullTextSearch:
		return cc.compileFullTextSearch(node)
	case *qom.SameNode:
		return cc.compileSameNode(node)
	case *qom.ChildNode:
		return cc.compileChildNode(node)
	case *qom.DescendantNode:
		return cc.compileDescendantNode(node)
	default:
		return nil, newError(CodeUnsupportedConstraint, "cannot lower constraint node %T", c)
	}
}

func (cc *constraintCompiler) compileAnd(node *qom.And) (Predicate, error) {
	left, err := cc.compile(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := cc.compile(node.Right)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, row index.Row) (bool, error) {
		ok, err := left(ctx, row)
		if err != nil || !ok {
			return false, err
		}
		return right(ctx, row)
	}, nil
}

func (cc *constraintCompiler) compileOr(node *qom.Or) (Predicate, error) {
	left, err := cc.compile(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := cc.compile(node.Right)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, row index.Row) (bool, error) {
		ok, err := left(ctx, row)
		if err != nil || ok {
			return ok, err
		}
		return right(ctx, row)
	}, nil
}

func (cc *constraintCompiler) compileNot(node *qom.Not) (Predicate, error) {
	inner, err := cc.compile(node.Operand)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, row index.Row) (bool, error) {
		ok, err := inner(ctx, row)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}, nil
}

func (cc *constraintCompiler) compileComparison(node *qom.Comparison) (Predicate, error) {
	operand, err := cc.compileDynamicOperand(node.Operand)
	if err != nil {
		return nil, err
	}
	staticVal, err := cc.resolveStaticOperand(node.Value)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case qom.OpEqual, qom.OpNotEqual, qom.OpLessThan, qom.OpLessThanOrEqual,
		qom.OpGreaterThan, qom.OpGreaterThanOrEqual, qom.OpLike:
	default:
		return nil, newError(CodeUnsupportedConstraint, "unsupported comparison operator %q", node.Operator)
	}
	return func(ctx context.Context, row index.Row) (bool, error) {
		candidate, ok, err := operand(ctx, row)
		if err != nil || !ok {
			// A comparison on an absent property is false, not an error.
			return false, err
		}
		if node.Operator == qom.OpLike {
			return value.Like(candidate.Text(), staticVal.Text()), nil
		}
		// Coerce the compared literal to the candidate's type so numerics
		// and dates compare per the property's declared type.
		coerced, err := cc.values.Coerce(staticVal, candidate.Type())
		if err != nil {
			// Type mismatch between candidate and literal: not comparable.
			return false, nil
		}
		cmp, err := value.Compare(candidate, coerced)
		if err != nil {
			return false, nil
		}
		switch node.Operator {
		case qom.OpEqual:
			return cmp == 0, nil
		case qom.OpNotEqual:
			return cmp != 0, nil
		case qom.OpLessThan:
			return cmp < 0, nil
		case qom.OpLessThanOrEqual:
			return cmp <= 0, nil
		case qom.OpGreaterThan:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	}, nil
}

// dynamicEval resolves a dynamic operand against a row. The bool result is
// false when the operand is not applicable to the row (unbound selector,
// absent property).
type dynamicEval func(ctx context.Context, row index.Row) (value.Value, bool, error)

func (cc *constraintCompiler) compileDynamicOperand(op qom.DynamicOperand) (dynamicEval, error) {
	switch o := op.(type) {
	case *qom.PropertyValue:
		return cc.propertyEval(o.SelectorName, o), nil
	case *qom.Length:
		inner := cc.propertyEval(o.Property.SelectorName, o.Property)
		return func(ctx context.Context, row index.Row) (value.Value, bool, error) {
			v, ok, err := inner(ctx, row)
			if err != nil || !ok {
				return value.Value{}, false, err
			}
			return value.Long(int64(len(v.Text()))), true, nil
		}, nil
	case *qom.NodeName:
		return cc.nodeNameEval(o.SelectorName, false), nil
	case *qom.NodeLocalName:
		return cc.nodeNameEval(o.SelectorName, true), nil
	case *qom.LowerCase:
		inner, err := cc.compileDynamicOperand(o.Operand)
		if err != nil {
			return nil, err
		}
		return mapText(inner, strings.ToLower), nil
	case *qom.UpperCase:
		inner, err := cc.compileDynamicOperand(o.Operand)
		if err != nil {
			return nil, err
		}
		return mapText(inner, strings.ToUpper), nil
	default:
		return nil, newError(CodeUnsupportedConstraint, "cannot lower dynamic operand %T", op)
	}
}

func (cc *constraintCompiler) propertyEval(selector string, pv *qom.PropertyValue) dynamicEval {
	return func(ctx context.Context, row index.Row) (value.Value, bool, error) {
		id, bound := row.Node(selector)
		if !bound {
			return value.Value{}, false, nil
		}
		v, ok, err := cc.svc.Reader.Property(ctx, id, pv.PropertyName)
		if err != nil {
			return value.Value{}, false, indexFailure(err)
		}
		return v, ok, nil
	}
}

func (cc *constraintCompiler) nodeNameEval(selector string, localOnly bool) dynamicEval {
	return func(ctx context.Context, row index.Row) (value.Value, bool, error) {
		id, bound := row.Node(selector)
		if !bound {
			return value.Value{}, false, nil
		}
		n, err := cc.svc.Reader.NodeName(ctx, id)
		if err != nil {
			return value.Value{}, false, indexFailure(err)
		}
		if localOnly {
			return value.String(n.LocalName()), true, nil
		}
		return value.NameValue(n), true, nil
	}
}

func mapText(inner dynamicEval, transform func(string) string) dynamicEval {
	return func(ctx context.Context, row index.Row) (value.Value, bool, error) {
		v, ok, err := inner(ctx, row)
		if err != nil || !ok {
			return value.Value{}, false, err
		}
		return value.String(transform(v.Text())), true, nil
	}
}

// resolveStaticOperand resolves a literal or bind variable to its value.
// Bind variables were resolved before compilation, so a missing name here is
// a programming error surfaced as UnboundVariable all the same.
func (cc *constraintCompiler) resolveStaticOperand(op qom.StaticOperand) (value.Value, error) {
	switch o := op.(type) {
	case *qom.Literal:
		return o.Value, nil
	case *qom.BindVariable:
		v, ok := cc.bindValues[o.Name]
		if !ok {
			return value.Value{}, newError(CodeUnboundVariable, "no value bound for variable %q", o.Name)
		}
		return v, nil
	default:
		return value.Value{}, newError(CodeUnsupportedConstraint, "cannot lower static operand %T", op)
	}
}

func (cc *constraintCompiler) compilePropertyExistence(node *qom.PropertyExistence) (Predicate, error) {
	return func(ctx context.Context, row index.Row) (bool, error) {
		id, bound := row.Node(node.SelectorName)
		if !bound {
			return false, nil
		}
		_, ok, err := cc.svc.Reader.Property(ctx, id, node.PropertyName)
		if err != nil {
			return false, indexFailure(err)
		}
		return ok, nil
	}, nil
}

func (cc *constraintCompiler) compileFullTextSearch(node *qom.FullTextSearch) (Predicate, error) {
	expr, err := cc.resolveStaticOperand(node.Expression)
	if err != nil {
		return nil, err
	}
	terms := cc.svc.Analyzer.Tokenize(expr.Text())
	if len(terms) == 0 {
		return func(context.Context, index.Row) (bool, error) { return true, nil }, nil
	}
	// Expand each query term with its synonyms once at compile time.
	expanded := make([][]string, len(terms))
	for i, term := range terms {
		expanded[i] = append([]string{term}, cc.svc.Synonyms.Synonyms(term)...)
	}
	return func(ctx context.Context, row index.Row) (bool, error) {
		id, bound := row.Node(node.SelectorName)
		if !bound {
			return false, nil
		}
		tokens, err := cc.candidateTokens(ctx, id, node.PropertyName)
		if err != nil {
			return false, err
		}
		present := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			present[tok] = struct{}{}
		}
		// Every query term (or one of its synonyms) must be present.
		for _, alternatives := range expanded {
			found := false
			for _, alt := range alternatives {
				if _, ok := present[alt]; ok {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

// candidateTokens tokenizes the searched property, or every string property
// when the search is not scoped to one.
func (cc *constraintCompiler) candidateTokens(ctx context.Context, id index.NodeID, prop *name.Name) ([]string, error) {
	if prop != nil {
		v, ok, err := cc.svc.Reader.Property(ctx, id, *prop)
		if err != nil {
			return nil, indexFailure(err)
		}
		if !ok {
			return nil, nil
		}
		return cc.svc.Analyzer.Tokenize(v.Text()), nil
	}
	names, err := cc.svc.Reader.PropertyNames(ctx, id)
	if err != nil {
		return nil, indexFailure(err)
	}
	var tokens []string
	for _, n := range names {
		v, ok, err := cc.svc.Reader.Property(ctx, id, n)
		if err != nil {
			return nil, indexFailure(err)
		}
		if ok && v.Type() == value.TypeString {
			tokens = append(tokens, cc.svc.Analyzer.Tokenize(v.Text())...)
		}
	}
	return tokens, nil
}

func (cc *constraintCompiler) compileSameNode(node *qom.SameNode) (Predicate, error) {
	return func(ctx context.Context, row index.Row) (bool, error) {
		id, bound := row.Node(node.SelectorName)
		if !bound {
			return false, nil
		}
		target, ok, err := cc.svc.Hierarchy.NodeAt(ctx, node.Path)
		if err != nil {
			return false, indexFailure(err)
		}
		return ok && target == id, nil
	}, nil
}

func (cc *constraintCompiler) compileChildNode(node *qom.ChildNode) (Predicate, error) {
	return func(ctx context.Context, row index.Row) (bool, error) {
		id, bound := row.Node(node.SelectorName)
		if !bound {
			return false, nil
		}
		parent, hasParent, err := cc.svc.Hierarchy.Parent(ctx, id)
		if err != nil {
			return false, indexFailure(err)
		}
		if !hasParent {
			return false, nil
		}
		target, ok, err := cc.svc.Hierarchy.NodeAt(ctx, node.ParentPath)
		if err != nil {
			return false, indexFailure(err)
		}
		return ok && target == parent, nil
	}, nil
}

func (cc *constraintCompiler) compileDescendantNode(node *qom.DescendantNode) (Predicate, error) {
	return func(ctx context.Context, row index.Row) (bool, error) {
		id, bound := row.Node(node.SelectorName)
		if !bound {
			return false, nil
		}
		ancestor, ok, err := cc.svc.Hierarchy.NodeAt(ctx, node.AncestorPath)
		if err != nil {
			return false, indexFailure(err)
		}
		if !ok {
			return false, nil
		}
		descendant, err := cc.svc.Hierarchy.IsDescendant(ctx, id, ancestor)
		if err != nil {
			return false, indexFailure(err)
		}
		return descendant, nil
	}, nil
}
