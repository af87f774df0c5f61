package qom

import "github.com/XenoAmess/jackrabbit/internal/name"

// Constraint represents a node in the where-clause predicate tree.
// Constraint trees are immutable after construction and may be shared
// read-only across concurrent compilations.
type Constraint interface {
	constraintNode()
}

// And is the conjunction of two constraints.
type And struct {
	Left  Constraint
	Right Constraint
}

func (c *And) constraintNode() {}

// Or is the disjunction of two constraints.
type Or struct {
	Left  Constraint
	Right Constraint
}

func (c *Or) constraintNode() {}

// Not negates a constraint.
type Not struct {
	Operand Constraint
}

func (c *Not) constraintNode() {}

// Operator is a comparison operator of a Comparison constraint.
type Operator string

// Supported comparison operators.
const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLike               Operator = "LIKE"
)

// Comparison tests a dynamic operand against a static operand.
type Comparison struct {
	Operand  DynamicOperand
	Operator Operator
	Value    StaticOperand
}

func (c *Comparison) constraintNode() {}

// PropertyExistence tests whether a candidate has the named property.
type PropertyExistence struct {
	SelectorName string
	PropertyName name.Name
}

func (c *PropertyExistence) constraintNode() {}

// FullTextSearch tests a candidate's text content against a search
// expression. When PropertyName is set only that property is searched,
// otherwise all string properties of the candidate are.
type FullTextSearch struct {
	SelectorName string
	PropertyName *name.Name
	// Expression is the search expression; a bind variable here is resolved
	// at execution time like any other.
	Expression StaticOperand
}

func (c *FullTextSearch) constraintNode() {}

// SameNode tests whether the candidate is the node at the given path.
type SameNode struct {
	SelectorName string
	Path         name.Path
}

func (c *SameNode) constraintNode() {}

// ChildNode tests whether the candidate is a direct child of the node at the
// given path.
type ChildNode struct {
	SelectorName string
	ParentPath   name.Path
}

func (c *ChildNode) constraintNode() {}

// DescendantNode tests whether the candidate is a descendant of the node at
// the given path.
type DescendantNode struct {
	SelectorName string
	AncestorPath name.Path
}

func (c *DescendantNode) constraintNode() {}
