package plan

import (
	"context"
	"log/slog"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/qom"
)

// QueryFactory lowers a source tree into an executable multi-column query.
// It is parametrized by the index collaborators, which it passes through
// opaquely. A factory is immutable and safe for concurrent use.
type QueryFactory struct {
	svc    index.Services
	logger *slog.Logger
}

// NewQueryFactory creates a query factory over the given index services.
func NewQueryFactory(svc index.Services, logger *slog.Logger) *QueryFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryFactory{svc: svc.WithDefaults(), logger: logger}
}

// Services returns the index collaborators the factory was built with.
func (f *QueryFactory) Services() index.Services {
	return f.svc
}

// Create lowers the source tree into a base query. A single selector becomes
// a type-scoped index scan; a join becomes a multi-column join query. Any
// other source shape fails with UnsupportedQueryShape naming the node.
func (f *QueryFactory) Create(src qom.Source) (MultiColumnQuery, error) {
	switch s := src.(type) {
	case *qom.Selector:
		return &selectorQuery{svc: f.svc, selector: s}, nil
	case *qom.Join:
		return f.createJoin(s)
	default:
		return nil, newError(CodeUnsupportedQueryShape, "cannot lower source node %T", src)
	}
}

func (f *QueryFactory) createJoin(j *qom.Join) (MultiColumnQuery, error) {
	switch j.JoinType {
	case qom.JoinTypeInner, qom.JoinTypeLeftOuter, qom.JoinTypeRightOuter:
	default:
		return nil, newError(CodeUnsupportedQueryShape, "unsupported join type %q", j.JoinType)
	}
	left, err := f.Create(j.Left)
	if err != nil {
		return nil, err
	}
	right, err := f.Create(j.Right)
	if err != nil {
		return nil, err
	}
	matcher, err := f.compileJoinCondition(j)
	if err != nil {
		return nil, err
	}
	return &joinQuery{
		svc:      f.svc,
		left:     left,
		right:    right,
		joinType: j.JoinType,
		matcher:  matcher,
	}, nil
}

// sideOf reports whether the selector is declared in the source.
func sideOf(src qom.Source, selector string) bool {
	for _, s := range qom.SelectorsOf(src) {
		if s.SelectorName == selector {
			return true
		}
	}
	return false
}

// spansJoin reports whether a and b sit on opposite sides of the join.
func spansJoin(j *qom.Join, a, b string) bool {
	return (sideOf(j.Left, a) && sideOf(j.Right, b)) ||
		(sideOf(j.Left, b) && sideOf(j.Right, a))
}

// joinMatcher decides whether a left row joins a right row.
type joinMatcher interface {
	// leftKey and rightKey return a hash key for equi-style matching, or
	// ok=false when the side has no key (unbound selector, absent property).
	// Matchers without an equi fast path return hashable=false from keyed().
	keyed() bool
	leftKey(ctx context.Context, row index.Row) (string, bool, error)
	rightKey(ctx context.Context, row index.Row) (string, bool, error)

	// matches is the general predicate used when keyed() is false.
	matches(ctx context.Context, left, right index.Row) (bool, error)
}

// compileJoinCondition validates the condition against the join's sides and
// produces a matcher.
func (f *QueryFactory) compileJoinCondition(j *qom.Join) (joinMatcher, error) {
	switch c := j.Condition.(type) {
	case *qom.EquiJoinCondition:
		m := &equiMatcher{svc: f.svc}
		switch {
		case sideOf(j.Left, c.Selector1) && sideOf(j.Right, c.Selector2):
			m.leftSelector, m.leftProperty = c.Selector1, c.Property1
			m.rightSelector, m.rightProperty = c.Selector2, c.Property2
		case sideOf(j.Left, c.Selector2) && sideOf(j.Right, c.Selector1):
			m.leftSelector, m.leftProperty = c.Selector2, c.Property2
			m.rightSelector, m.rightProperty = c.Selector1, c.Property1
		default:
			return nil, newError(CodeUnsupportedQueryShape,
				"equi-join selectors %q and %q do not span the join", c.Selector1, c.Selector2)
		}
		return m, nil
	case *qom.SameNodeJoinCondition:
		left, right := c.Selector1, c.Selector2
		if !sideOf(j.Left, left) {
			left, right = right, left
		}
		if !sideOf(j.Left, left) || !sideOf(j.Right, right) {
			return nil, newError(CodeUnsupportedQueryShape,
				"same-node join selectors %q and %q do not span the join", c.Selector1, c.Selector2)
		}
		return &sameNodeMatcher{leftSelector: left, rightSelector: right}, nil
	case *qom.ChildNodeJoinCondition:
		if !spansJoin(j, c.ChildSelector, c.ParentSelector) {
			return nil, newError(CodeUnsupportedQueryShape,
				"child-node join selectors %q and %q do not span the join", c.ChildSelector, c.ParentSelector)
		}
		return &hierarchyMatcher{
			svc:          f.svc,
			narrow:       c.ChildSelector,
			wide:         c.ParentSelector,
			narrowOnLeft: sideOf(j.Left, c.ChildSelector),
			directOnly:   true,
		}, nil
	case *qom.DescendantNodeJoinCondition:
		if !spansJoin(j, c.DescendantSelector, c.AncestorSelector) {
			return nil, newError(CodeUnsupportedQueryShape,
				"descendant-node join selectors %q and %q do not span the join", c.DescendantSelector, c.AncestorSelector)
		}
		return &hierarchyMatcher{
			svc:          f.svc,
			narrow:       c.DescendantSelector,
			wide:         c.AncestorSelector,
			narrowOnLeft: sideOf(j.Left, c.DescendantSelector),
		}, nil
	default:
		return nil, newError(CodeUnsupportedQueryShape, "cannot lower join condition %T", j.Condition)
	}
}
