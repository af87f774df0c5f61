package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/qom"
)

func selectorTree(t *testing.T, selector, nodeType string, orderings ...qom.Ordering) *qom.QueryTree {
	t.Helper()
	tree, err := qom.NewQueryTree(
		&qom.Selector{SelectorName: selector, NodeType: name.Local(nodeType)},
		nil, nil, orderings)
	require.NoError(t, err)
	return tree
}

func TestPlanCacheGetPut(t *testing.T) {
	c := NewPlanCache(4)
	plan := &CachedPlan{}

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(1, plan)
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Same(t, plan, got)
}

func TestPlanCacheEvictsWhenFull(t *testing.T) {
	c := NewPlanCache(2)
	c.Put(1, &CachedPlan{})
	c.Put(2, &CachedPlan{})
	c.Put(3, &CachedPlan{})

	_, ok := c.Get(1)
	assert.False(t, ok, "reaching capacity clears the cache")
	got, ok := c.Get(3)
	require.True(t, ok)
	assert.NotNil(t, got)
}

func TestPlanCacheZeroCapacityDisables(t *testing.T) {
	c := NewPlanCache(0)
	c.Put(1, &CachedPlan{})
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestPlanCacheNilSafe(t *testing.T) {
	var c *PlanCache
	c.Put(1, &CachedPlan{})
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestTreeKeyStableAndShapeSensitive(t *testing.T) {
	a := selectorTree(t, "n", "doc")
	assert.Equal(t, TreeKey(a), TreeKey(a), "the same tree always hashes the same")

	same := selectorTree(t, "n", "doc")
	assert.Equal(t, TreeKey(a), TreeKey(same), "equal shapes share a key")

	otherType := selectorTree(t, "n", "folder")
	assert.NotEqual(t, TreeKey(a), TreeKey(otherType))

	otherSelector := selectorTree(t, "m", "doc")
	assert.NotEqual(t, TreeKey(a), TreeKey(otherSelector))
}

func TestTreeKeySensitiveToOrderings(t *testing.T) {
	plain := selectorTree(t, "n", "doc")
	asc := selectorTree(t, "n", "doc", qom.Ordering{
		Operand: &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("rank")},
	})
	desc := selectorTree(t, "n", "doc", qom.Ordering{
		Operand:    &qom.PropertyValue{SelectorName: "n", PropertyName: name.Local("rank")},
		Descending: true,
	})

	assert.NotEqual(t, TreeKey(plain), TreeKey(asc))
	assert.NotEqual(t, TreeKey(asc), TreeKey(desc))
}

func TestTreeKeyDistinguishesJoinShapes(t *testing.T) {
	join := func(jt qom.JoinType) *qom.QueryTree {
		tree, err := qom.NewQueryTree(&qom.Join{
			Left:     &qom.Selector{SelectorName: "a", NodeType: name.Local("doc")},
			Right:    &qom.Selector{SelectorName: "b", NodeType: name.Local("folder")},
			JoinType: jt,
			Condition: &qom.ChildNodeJoinCondition{
				ChildSelector: "a", ParentSelector: "b",
			},
		}, nil, nil, nil)
		require.NoError(t, err)
		return tree
	}

	assert.NotEqual(t, TreeKey(join(qom.JoinTypeInner)), TreeKey(join(qom.JoinTypeLeftOuter)))
}
