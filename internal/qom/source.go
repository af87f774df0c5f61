package qom

import "github.com/XenoAmess/jackrabbit/internal/name"

// Source represents a node in the from-clause subtree: either a single
// Selector or a Join of two sources.
type Source interface {
	sourceNode()
}

// Selector binds a name to the scope of candidate nodes of a given type.
type Selector struct {
	// SelectorName is the name other tree nodes use to reference this scope.
	SelectorName string
	// NodeType scopes the selector to nodes of this type.
	NodeType name.Name
}

func (s *Selector) sourceNode() {}

// JoinType selects the join semantics of a Join node.
type JoinType string

// Supported join types.
const (
	JoinTypeInner      JoinType = "inner"
	JoinTypeLeftOuter  JoinType = "left-outer"
	JoinTypeRightOuter JoinType = "right-outer"
)

// Join combines two sources under a join condition.
type Join struct {
	Left      Source
	Right     Source
	JoinType  JoinType
	Condition JoinCondition
}

func (j *Join) sourceNode() {}

// JoinCondition represents the condition of a Join node.
type JoinCondition interface {
	joinCondition()
}

// EquiJoinCondition joins candidates whose named property values are equal.
type EquiJoinCondition struct {
	Selector1 string
	Property1 name.Name
	Selector2 string
	Property2 name.Name
}

func (c *EquiJoinCondition) joinCondition() {}

// SameNodeJoinCondition joins candidates bound to the same node.
type SameNodeJoinCondition struct {
	Selector1 string
	Selector2 string
}

func (c *SameNodeJoinCondition) joinCondition() {}

// ChildNodeJoinCondition joins a child-selector candidate to its direct
// parent bound by the parent selector.
type ChildNodeJoinCondition struct {
	ChildSelector  string
	ParentSelector string
}

func (c *ChildNodeJoinCondition) joinCondition() {}

// DescendantNodeJoinCondition joins a descendant-selector candidate to any of
// its ancestors bound by the ancestor selector.
type DescendantNodeJoinCondition struct {
	DescendantSelector string
	AncestorSelector   string
}

func (c *DescendantNodeJoinCondition) joinCondition() {}

// SelectorsOf returns every Selector declared in the source tree, in
// left-to-right order.
func SelectorsOf(s Source) []*Selector {
	switch src := s.(type) {
	case *Selector:
		return []*Selector{src}
	case *Join:
		return append(SelectorsOf(src.Left), SelectorsOf(src.Right)...)
	default:
		return nil
	}
}
