package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

func compileFor(t *testing.T, f *fakeIndex, c qom.Constraint, binds map[string]value.Value) Predicate {
	t.Helper()
	factory := NewQueryFactory(f.services(), nil)
	selectors := map[string]*qom.Selector{"n": {SelectorName: "n", NodeType: name.Local("doc")}}
	pred, err := CompileConstraint(c, binds, selectors, factory, value.NewFactory())
	require.NoError(t, err)
	return pred
}

func rowFor(n *fakeNode) index.Row {
	return index.NewRow(map[string]index.NodeID{"n": n.id})
}

func propComparison(prop string, op qom.Operator, v value.Value) *qom.Comparison {
	return &qom.Comparison{
		Operand:  &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local(prop)},
		Operator: op,
		Value:    &qom.Literal{Value: v},
	}
}

func TestComparisonOperators(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "item", "doc", map[string]value.Value{
		"price": value.Long(15),
		"title": value.String("war and peace"),
	})
	row := rowFor(node)

	tests := []struct {
		name       string
		constraint qom.Constraint
		want       bool
	}{
		{"eq true", propComparison("price", qom.OpEqual, value.Long(15)), true},
		{"eq false", propComparison("price", qom.OpEqual, value.Long(16)), false},
		{"ne", propComparison("price", qom.OpNotEqual, value.Long(16)), true},
		{"lt", propComparison("price", qom.OpLessThan, value.Long(16)), true},
		{"lt boundary", propComparison("price", qom.OpLessThan, value.Long(15)), false},
		{"le boundary", propComparison("price", qom.OpLessThanOrEqual, value.Long(15)), true},
		{"gt", propComparison("price", qom.OpGreaterThan, value.Long(10)), true},
		{"ge boundary", propComparison("price", qom.OpGreaterThanOrEqual, value.Long(15)), true},
		{"like prefix", propComparison("title", qom.OpLike, value.String("war%")), true},
		{"like infix", propComparison("title", qom.OpLike, value.String("%and%")), true},
		{"like single char", propComparison("title", qom.OpLike, value.String("war and peac_")), true},
		{"like miss", propComparison("title", qom.OpLike, value.String("peace%")), false},
		{"absent property is false", propComparison("missing", qom.OpEqual, value.Long(1)), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred := compileFor(t, f, tc.constraint, nil)
			got, err := pred(context.Background(), row)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComparisonCoercesToDeclaredType(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "item", "doc", map[string]value.Value{
		"price": value.Long(15),
	})

	// The string literal "9" coerces to the property's Long type, so the
	// comparison is numeric: 15 > 9, not "15" > "9" lexically.
	pred := compileFor(t, f, propComparison("price", qom.OpGreaterThan, value.String("9")), nil)
	got, err := pred(context.Background(), rowFor(node))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestComparisonIncomparableIsFalse(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "item", "doc", map[string]value.Value{
		"price": value.Long(15),
	})

	pred := compileFor(t, f, propComparison("price", qom.OpEqual, value.String("not a number")), nil)
	got, err := pred(context.Background(), rowFor(node))
	require.NoError(t, err)
	assert.False(t, got, "a type mismatch excludes the row instead of failing")
}

func TestLogicalConnectives(t *testing.T) {
	f := newFakeIndex()
	cheapX := f.addNode(nil, "cheap-x", "doc", map[string]value.Value{
		"price": value.Long(5), "category": value.String("X"),
	})
	dearX := f.addNode(nil, "dear-x", "doc", map[string]value.Value{
		"price": value.Long(20), "category": value.String("X"),
	})
	dearY := f.addNode(nil, "dear-y", "doc", map[string]value.Value{
		"price": value.Long(20), "category": value.String("Y"),
	})

	// (price > 10) AND NOT (category = 'X')
	constraint := &qom.And{
		Left: propComparison("price", qom.OpGreaterThan, value.Long(10)),
		Right: &qom.Not{
			Operand: propComparison("category", qom.OpEqual, value.String("X")),
		},
	}
	pred := compileFor(t, f, constraint, nil)

	for _, tc := range []struct {
		node *fakeNode
		want bool
	}{
		{cheapX, false},
		{dearX, false},
		{dearY, true},
	} {
		got, err := pred(context.Background(), rowFor(tc.node))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "node %s", tc.node.name)
	}
}

func TestOrShortCircuits(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "item", "doc", map[string]value.Value{
		"price": value.Long(5),
	})

	constraint := &qom.Or{
		Left:  propComparison("price", qom.OpLessThan, value.Long(10)),
		Right: propComparison("price", qom.OpGreaterThan, value.Long(100)),
	}
	pred := compileFor(t, f, constraint, nil)
	got, err := pred(context.Background(), rowFor(node))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBindVariableInComparison(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "item", "doc", map[string]value.Value{
		"category": value.String("books"),
	})

	constraint := &qom.Comparison{
		Operand:  &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("category")},
		Operator: qom.OpEqual,
		Value:    &qom.BindVariable{Name: "cat"},
	}
	pred := compileFor(t, f, constraint, map[string]value.Value{"cat": value.String("books")})
	got, err := pred(context.Background(), rowFor(node))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBindVariableMissingFailsAtCompile(t *testing.T) {
	f := newFakeIndex()
	factory := NewQueryFactory(f.services(), nil)
	constraint := &qom.Comparison{
		Operand:  &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("category")},
		Operator: qom.OpEqual,
		Value:    &qom.BindVariable{Name: "cat"},
	}
	_, err := CompileConstraint(constraint, nil, nil, factory, value.NewFactory())
	require.Error(t, err)

	var qe *Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, CodeUnboundVariable, qe.Code)
}

func TestUnsupportedOperatorFailsAtCompile(t *testing.T) {
	f := newFakeIndex()
	factory := NewQueryFactory(f.services(), nil)
	constraint := propComparison("price", qom.Operator("BETWEEN"), value.Long(1))
	_, err := CompileConstraint(constraint, nil, nil, factory, value.NewFactory())
	require.Error(t, err)

	var qe *Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, CodeUnsupportedConstraint, qe.Code)
	assert.Contains(t, qe.Message, "BETWEEN")
}

func TestUnsupportedOperandFailsAtCompile(t *testing.T) {
	f := newFakeIndex()
	factory := NewQueryFactory(f.services(), nil)
	constraint := &qom.Comparison{
		Operand:  &qom.FullTextSearchScore{SelectorName: "n"},
		Operator: qom.OpGreaterThan,
		Value:    &qom.Literal{Value: value.Double(0.5)},
	}
	_, err := CompileConstraint(constraint, nil, nil, factory, value.NewFactory())
	require.Error(t, err)

	var qe *Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, CodeUnsupportedConstraint, qe.Code)
}

func TestPropertyExistence(t *testing.T) {
	f := newFakeIndex()
	with := f.addNode(nil, "with", "doc", map[string]value.Value{"tag": value.String("x")})
	without := f.addNode(nil, "without", "doc", nil)

	pred := compileFor(t, f, &qom.PropertyExistence{SelectorName: "n", PropertyName: name.Local("tag")}, nil)

	got, err := pred(context.Background(), rowFor(with))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = pred(context.Background(), rowFor(without))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDerivedOperands(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "Report", "doc", map[string]value.Value{
		"title": value.String("Quarterly"),
	})
	row := rowFor(node)

	tests := []struct {
		name       string
		constraint qom.Constraint
		want       bool
	}{
		{
			"lower case of property",
			&qom.Comparison{
				Operand:  &qom.LowerCase{Operand: &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("title")}},
				Operator: qom.OpEqual,
				Value:    &qom.Literal{Value: value.String("quarterly")},
			},
			true,
		},
		{
			"upper case of property",
			&qom.Comparison{
				Operand:  &qom.UpperCase{Operand: &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("title")}},
				Operator: qom.OpEqual,
				Value:    &qom.Literal{Value: value.String("QUARTERLY")},
			},
			true,
		},
		{
			"length of property text",
			&qom.Comparison{
				Operand:  &qom.Length{Property: &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("title")}},
				Operator: qom.OpEqual,
				Value:    &qom.Literal{Value: value.Long(9)},
			},
			true,
		},
		{
			"node name",
			&qom.Comparison{
				Operand:  &qom.NodeName{SelectorName: "n"},
				Operator: qom.OpEqual,
				Value:    &qom.Literal{Value: value.String("Report")},
			},
			true,
		},
		{
			"node local name lower-cased",
			&qom.Comparison{
				Operand:  &qom.LowerCase{Operand: &qom.NodeLocalName{SelectorName: "n"}},
				Operator: qom.OpEqual,
				Value:    &qom.Literal{Value: value.String("report")},
			},
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred := compileFor(t, f, tc.constraint, nil)
			got, err := pred(context.Background(), row)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFullTextSearchScoped(t *testing.T) {
	f := newFakeIndex()
	hit := f.addNode(nil, "hit", "doc", map[string]value.Value{
		"body": value.String("The quick brown fox jumps"),
	})
	miss := f.addNode(nil, "miss", "doc", map[string]value.Value{
		"body":  value.String("nothing relevant"),
		"other": value.String("quick fox"),
	})

	prop := name.Local("body")
	pred := compileFor(t, f, &qom.FullTextSearch{
		SelectorName: "n",
		PropertyName: &prop,
		Expression:   &qom.Literal{Value: value.String("quick fox")},
	}, nil)

	got, err := pred(context.Background(), rowFor(hit))
	require.NoError(t, err)
	assert.True(t, got, "every term matches, case-insensitively")

	got, err = pred(context.Background(), rowFor(miss))
	require.NoError(t, err)
	assert.False(t, got, "scoped search ignores other properties")
}

func TestFullTextSearchAcrossProperties(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "doc", "doc", map[string]value.Value{
		"title": value.String("fox handbook"),
		"body":  value.String("quick reference"),
		"count": value.Long(3),
	})

	pred := compileFor(t, f, &qom.FullTextSearch{
		SelectorName: "n",
		Expression:   &qom.Literal{Value: value.String("quick fox")},
	}, nil)

	got, err := pred(context.Background(), rowFor(node))
	require.NoError(t, err)
	assert.True(t, got, "terms may match across different string properties")
}

func TestFullTextSearchSynonyms(t *testing.T) {
	f := newFakeIndex()
	node := f.addNode(nil, "doc", "doc", map[string]value.Value{
		"body": value.String("a fast animal"),
	})

	svc := f.services()
	svc.Synonyms = index.StaticSynonyms{"quick": {"fast", "rapid"}}
	factory := NewQueryFactory(svc, nil)
	pred, err := CompileConstraint(&qom.FullTextSearch{
		SelectorName: "n",
		Expression:   &qom.Literal{Value: value.String("quick")},
	}, nil, nil, factory, value.NewFactory())
	require.NoError(t, err)

	got, err := pred(context.Background(), rowFor(node))
	require.NoError(t, err)
	assert.True(t, got, "a synonym of the query term satisfies it")
}

func TestPathConstraints(t *testing.T) {
	f := newFakeIndex()
	folder := f.addNode(nil, "folder", "folder", nil)
	doc := f.addNode(folder, "doc", "doc", nil)
	deep := f.addNode(f.addNode(folder, "sub", "folder", nil), "deep", "doc", nil)
	loose := f.addNode(nil, "loose", "doc", nil)

	folderPath, err := name.ParsePath("/folder")
	require.NoError(t, err)
	docPath, err := name.ParsePath("/folder/doc")
	require.NoError(t, err)

	t.Run("same node", func(t *testing.T) {
		pred := compileFor(t, f, &qom.SameNode{SelectorName: "n", Path: docPath}, nil)
		got, err := pred(context.Background(), rowFor(doc))
		require.NoError(t, err)
		assert.True(t, got)

		got, err = pred(context.Background(), rowFor(loose))
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("child node", func(t *testing.T) {
		pred := compileFor(t, f, &qom.ChildNode{SelectorName: "n", ParentPath: folderPath}, nil)
		got, err := pred(context.Background(), rowFor(doc))
		require.NoError(t, err)
		assert.True(t, got)

		got, err = pred(context.Background(), rowFor(deep))
		require.NoError(t, err)
		assert.False(t, got, "grandchildren are not children")
	})

	t.Run("descendant node", func(t *testing.T) {
		pred := compileFor(t, f, &qom.DescendantNode{SelectorName: "n", AncestorPath: folderPath}, nil)
		for _, n := range []*fakeNode{doc, deep} {
			got, err := pred(context.Background(), rowFor(n))
			require.NoError(t, err)
			assert.True(t, got)
		}
		got, err := pred(context.Background(), rowFor(loose))
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("nonexistent path matches nothing", func(t *testing.T) {
		ghost, err := name.ParsePath("/no/such/place")
		require.NoError(t, err)
		pred := compileFor(t, f, &qom.SameNode{SelectorName: "n", Path: ghost}, nil)
		got, err := pred(context.Background(), rowFor(doc))
		require.NoError(t, err)
		assert.False(t, got)
	})
}
