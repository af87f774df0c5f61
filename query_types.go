package jackrabbit

import (
	"github.com/XenoAmess/jackrabbit/internal/access"
	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/plan"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// Name re-exports the namespace-qualified identifier type for external
// consumers.
type Name = name.Name

// Path re-exports the hierarchical path type for external consumers.
type Path = name.Path

// NamespaceResolver re-exports the prefix/URI mapping interface.
type NamespaceResolver = name.Resolver

// Value re-exports the typed property value for external consumers.
type Value = value.Value

// ValueType re-exports the property type enumeration.
type ValueType = value.Type

// ValueFactory re-exports the literal coercion factory.
type ValueFactory = value.Factory

// QueryTree re-exports the immutable query model tree.
type QueryTree = qom.QueryTree

// Source re-exports the from-clause node interface.
type Source = qom.Source

// Selector re-exports the selector source node.
type Selector = qom.Selector

// Join re-exports the join source node.
type Join = qom.Join

// JoinType re-exports the join type enumeration.
type JoinType = qom.JoinType

// JoinCondition re-exports the join condition interface.
type JoinCondition = qom.JoinCondition

// EquiJoinCondition re-exports the property-equality join condition.
type EquiJoinCondition = qom.EquiJoinCondition

// SameNodeJoinCondition re-exports the same-node join condition.
type SameNodeJoinCondition = qom.SameNodeJoinCondition

// ChildNodeJoinCondition re-exports the child-node join condition.
type ChildNodeJoinCondition = qom.ChildNodeJoinCondition

// DescendantNodeJoinCondition re-exports the descendant-node join condition.
type DescendantNodeJoinCondition = qom.DescendantNodeJoinCondition

// Constraint re-exports the where-clause node interface.
type Constraint = qom.Constraint

// And re-exports the conjunction constraint.
type And = qom.And

// Or re-exports the disjunction constraint.
type Or = qom.Or

// Not re-exports the negation constraint.
type Not = qom.Not

// Comparison re-exports the comparison constraint.
type Comparison = qom.Comparison

// PropertyExistence re-exports the property-existence constraint.
type PropertyExistence = qom.PropertyExistence

// FullTextSearch re-exports the full-text search constraint.
type FullTextSearch = qom.FullTextSearch

// SameNode re-exports the same-node path constraint.
type SameNode = qom.SameNode

// ChildNode re-exports the child-node path constraint.
type ChildNode = qom.ChildNode

// DescendantNode re-exports the descendant-node path constraint.
type DescendantNode = qom.DescendantNode

// DynamicOperand re-exports the candidate-evaluated operand interface.
type DynamicOperand = qom.DynamicOperand

// PropertyValue re-exports the property value operand.
type PropertyValue = qom.PropertyValue

// Length re-exports the value-length operand.
type Length = qom.Length

// NodeName re-exports the node name operand.
type NodeName = qom.NodeName

// NodeLocalName re-exports the node local-name operand.
type NodeLocalName = qom.NodeLocalName

// LowerCase re-exports the lower-case operand.
type LowerCase = qom.LowerCase

// UpperCase re-exports the upper-case operand.
type UpperCase = qom.UpperCase

// FullTextSearchScore re-exports the relevance score operand.
type FullTextSearchScore = qom.FullTextSearchScore

// StaticOperand re-exports the execution-time operand interface.
type StaticOperand = qom.StaticOperand

// Literal re-exports the literal operand.
type Literal = qom.Literal

// BindVariable re-exports the bind variable operand.
type BindVariable = qom.BindVariable

// Operator re-exports the comparison operator type.
type Operator = qom.Operator

// Column re-exports the projected column spec.
type Column = qom.Column

// Ordering re-exports the ordering spec.
type Ordering = qom.Ordering

// Comparison operator constants
const (
	OpEqual              Operator = qom.OpEqual
	OpNotEqual           Operator = qom.OpNotEqual
	OpLessThan           Operator = qom.OpLessThan
	OpLessThanOrEqual    Operator = qom.OpLessThanOrEqual
	OpGreaterThan        Operator = qom.OpGreaterThan
	OpGreaterThanOrEqual Operator = qom.OpGreaterThanOrEqual
	OpLike               Operator = qom.OpLike
)

// Join type constants
const (
	JoinTypeInner      JoinType = qom.JoinTypeInner
	JoinTypeLeftOuter  JoinType = qom.JoinTypeLeftOuter
	JoinTypeRightOuter JoinType = qom.JoinTypeRightOuter
)

// NodeID re-exports the node identifier type.
type NodeID = index.NodeID

// IndexServices re-exports the bundle of index collaborators a query is
// compiled against.
type IndexServices = index.Services

// AccessPolicy re-exports the per-node read check interface.
type AccessPolicy = access.Policy

// AccessPolicyFunc re-exports the function adapter for AccessPolicy.
type AccessPolicyFunc = access.PolicyFunc

// Rows re-exports the lazy result sequence.
type Rows = plan.Rows

// ResultRow re-exports one row of the result.
type ResultRow = plan.ResultRow

// LimitUnbounded is the sentinel limit meaning "no cap on the number of
// rows".
const LimitUnbounded = plan.LimitUnbounded
