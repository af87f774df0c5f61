package plan

import (
	"context"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/qom"
)

// selectorQuery scans the index for nodes of the selector's type and binds
// each to the selector name.
type selectorQuery struct {
	svc      index.Services
	selector *qom.Selector
}

func (q *selectorQuery) Execute(ctx context.Context) (index.RowIterator, error) {
	nodes, err := q.svc.Reader.NodesOfType(ctx, q.selector.NodeType)
	if err != nil {
		return nil, indexFailure(err)
	}
	return &selectorRowIterator{selector: q.selector.SelectorName, nodes: nodes}, nil
}

// selectorRowIterator maps a node stream to single-binding rows.
type selectorRowIterator struct {
	selector string
	nodes    index.NodeIterator
	row      index.Row
}

func (it *selectorRowIterator) Next() bool {
	if !it.nodes.Next() {
		return false
	}
	it.row = index.NewRow(map[string]index.NodeID{it.selector: it.nodes.ID()})
	return true
}

func (it *selectorRowIterator) Row() index.Row { return it.row }

func (it *selectorRowIterator) Err() error { return indexFailure(it.nodes.Err()) }

func (it *selectorRowIterator) Close() error { return it.nodes.Close() }

// joinQuery joins two multi-column queries. The right side is materialized
// once per execution; the left side streams. For equi conditions the right
// side is hashed on its join key. Right-outer joins additionally emit
// unmatched right rows after the left side is exhausted.
type joinQuery struct {
	svc      index.Services
	left     MultiColumnQuery
	right    MultiColumnQuery
	joinType qom.JoinType
	matcher  joinMatcher
}

func (q *joinQuery) Execute(ctx context.Context) (index.RowIterator, error) {
	rightIt, err := q.right.Execute(ctx)
	if err != nil {
		return nil, err
	}
	rightRows, err := drainRows(rightIt)
	if err != nil {
		return nil, err
	}
	it := &joinIterator{
		ctx:       ctx,
		joinType:  q.joinType,
		matcher:   q.matcher,
		rightRows: rightRows,
		matched:   make([]bool, len(rightRows)),
	}
	if q.matcher.keyed() {
		it.rightByKey = make(map[string][]int, len(rightRows))
		for i, row := range rightRows {
			key, ok, err := q.matcher.rightKey(ctx, row)
			if err != nil {
				return nil, err
			}
			if ok {
				it.rightByKey[key] = append(it.rightByKey[key], i)
			}
		}
	}
	leftIt, err := q.left.Execute(ctx)
	if err != nil {
		return nil, err
	}
	it.left = leftIt
	return it, nil
}

// joinIterator lazily produces joined rows: first by streaming the left side
// against the materialized right side, then (right-outer only) the unmatched
// right rows.
type joinIterator struct {
	ctx        context.Context
	left       index.RowIterator
	joinType   qom.JoinType
	matcher    joinMatcher
	rightRows  []index.Row
	rightByKey map[string][]int
	matched    []bool

	pending  []index.Row
	cur      index.Row
	rightPos int
	draining bool
	err      error
	closed   bool
}

func (it *joinIterator) Next() bool {
	if it.err != nil || it.closed {
		return false
	}
	for {
		if len(it.pending) > 0 {
			it.cur = it.pending[0]
			it.pending = it.pending[1:]
			return true
		}
		if it.draining {
			// Right-outer tail: unmatched right rows in native order.
			for it.rightPos < len(it.rightRows) {
				pos := it.rightPos
				it.rightPos++
				if !it.matched[pos] {
					it.cur = it.rightRows[pos]
					return true
				}
			}
			return false
		}
		if !it.left.Next() {
			if err := it.left.Err(); err != nil {
				it.err = indexFailure(err)
				return false
			}
			if it.joinType == qom.JoinTypeRightOuter {
				it.draining = true
				continue
			}
			return false
		}
		leftRow := it.left.Row()
		matches, err := it.matchIndices(leftRow)
		if err != nil {
			it.err = err
			return false
		}
		if len(matches) == 0 {
			if it.joinType == qom.JoinTypeLeftOuter {
				it.cur = leftRow
				return true
			}
			continue
		}
		for _, idx := range matches {
			it.matched[idx] = true
			it.pending = append(it.pending, leftRow.Merge(it.rightRows[idx]))
		}
	}
}

func (it *joinIterator) matchIndices(leftRow index.Row) ([]int, error) {
	if it.rightByKey != nil {
		key, ok, err := it.matcher.leftKey(it.ctx, leftRow)
		if err != nil || !ok {
			return nil, err
		}
		return it.rightByKey[key], nil
	}
	var matches []int
	for i, rightRow := range it.rightRows {
		ok, err := it.matcher.matches(it.ctx, leftRow, rightRow)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

func (it *joinIterator) Row() index.Row { return it.cur }

func (it *joinIterator) Err() error { return it.err }

func (it *joinIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.left.Close()
}

// equiMatcher joins on equality of two property values, one per side.
type equiMatcher struct {
	svc           index.Services
	leftSelector  string
	leftProperty  name.Name
	rightSelector string
	rightProperty name.Name
}

func (m *equiMatcher) keyed() bool { return true }

func (m *equiMatcher) leftKey(ctx context.Context, row index.Row) (string, bool, error) {
	return m.propertyKey(ctx, row, m.leftSelector, m.leftProperty)
}

func (m *equiMatcher) rightKey(ctx context.Context, row index.Row) (string, bool, error) {
	return m.propertyKey(ctx, row, m.rightSelector, m.rightProperty)
}

func (m *equiMatcher) propertyKey(ctx context.Context, row index.Row, selector string, prop name.Name) (string, bool, error) {
	id, bound := row.Node(selector)
	if !bound {
		return "", false, nil
	}
	v, ok, err := m.svc.Reader.Property(ctx, id, prop)
	if err != nil {
		return "", false, indexFailure(err)
	}
	if !ok {
		return "", false, nil
	}
	return v.Key(), true, nil
}

func (m *equiMatcher) matches(ctx context.Context, left, right index.Row) (bool, error) {
	lk, lok, err := m.leftKey(ctx, left)
	if err != nil || !lok {
		return false, err
	}
	rk, rok, err := m.rightKey(ctx, right)
	if err != nil || !rok {
		return false, err
	}
	return lk == rk, nil
}

// sameNodeMatcher joins rows bound to the identical node.
type sameNodeMatcher struct {
	leftSelector  string
	rightSelector string
}

func (m *sameNodeMatcher) keyed() bool { return true }

func (m *sameNodeMatcher) leftKey(_ context.Context, row index.Row) (string, bool, error) {
	id, ok := row.Node(m.leftSelector)
	return id.String(), ok, nil
}

func (m *sameNodeMatcher) rightKey(_ context.Context, row index.Row) (string, bool, error) {
	id, ok := row.Node(m.rightSelector)
	return id.String(), ok, nil
}

func (m *sameNodeMatcher) matches(_ context.Context, left, right index.Row) (bool, error) {
	l, lok := left.Node(m.leftSelector)
	r, rok := right.Node(m.rightSelector)
	return lok && rok && l == r, nil
}

// hierarchyMatcher joins a narrow-side node (child or descendant) to a
// wide-side node (parent or ancestor) through the hierarchy resolver.
type hierarchyMatcher struct {
	svc          index.Services
	narrow       string
	wide         string
	narrowOnLeft bool
	directOnly   bool
}

func (m *hierarchyMatcher) keyed() bool { return false }

func (m *hierarchyMatcher) leftKey(context.Context, index.Row) (string, bool, error) {
	return "", false, nil
}

func (m *hierarchyMatcher) rightKey(context.Context, index.Row) (string, bool, error) {
	return "", false, nil
}

func (m *hierarchyMatcher) matches(ctx context.Context, left, right index.Row) (bool, error) {
	narrowRow, wideRow := left, right
	if !m.narrowOnLeft {
		narrowRow, wideRow = right, left
	}
	narrowID, ok := narrowRow.Node(m.narrow)
	if !ok {
		return false, nil
	}
	wideID, ok := wideRow.Node(m.wide)
	if !ok {
		return false, nil
	}
	if m.directOnly {
		parent, hasParent, err := m.svc.Hierarchy.Parent(ctx, narrowID)
		if err != nil {
			return false, indexFailure(err)
		}
		return hasParent && parent == wideID, nil
	}
	descendant, err := m.svc.Hierarchy.IsDescendant(ctx, narrowID, wideID)
	if err != nil {
		return false, indexFailure(err)
	}
	return descendant, nil
}
