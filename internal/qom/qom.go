// Package qom defines the immutable query model tree: a source (selectors and
// joins), an optional constraint tree, output columns and orderings. Trees
// are built once by a parser or programmatically, validated by the caller,
// and shared read-only across concurrent compilations.
package qom

import (
	"fmt"

	"github.com/XenoAmess/jackrabbit/internal/name"
)

// Column selects one property of one selector for projection into the
// result. The order of columns in a tree defines the output column order.
type Column struct {
	SelectorName string
	PropertyName name.Name
	// ColumnName is the exposed name of the column; empty means
	// "selector.property".
	ColumnName string
}

// Name returns the exposed column name.
func (c Column) Name() string {
	if c.ColumnName != "" {
		return c.ColumnName
	}
	return c.SelectorName + "." + c.PropertyName.String()
}

// Ordering sorts the result by a dynamic operand. Entries earlier in the
// tree's ordering list take precedence as sort keys.
type Ordering struct {
	Operand    DynamicOperand
	Descending bool
}

// QueryTree is the immutable root of a parsed query: source, optional
// constraint, columns and orderings. A QueryTree is safe for concurrent use
// by multiple executions.
type QueryTree struct {
	source     Source
	constraint Constraint
	columns    []Column
	orderings  []Ordering
}

// NewQueryTree builds a query tree. The source is required; constraint may be
// nil. Selector-name consistency across the tree is the caller's contract and
// is not re-validated here.
func NewQueryTree(source Source, constraint Constraint, columns []Column, orderings []Ordering) (*QueryTree, error) {
	if source == nil {
		return nil, fmt.Errorf("query tree requires a source")
	}
	t := &QueryTree{
		source:     source,
		constraint: constraint,
		columns:    make([]Column, len(columns)),
		orderings:  make([]Ordering, len(orderings)),
	}
	copy(t.columns, columns)
	copy(t.orderings, orderings)
	return t, nil
}

// Source returns the from-clause subtree.
func (t *QueryTree) Source() Source {
	return t.source
}

// Constraint returns the where-clause subtree, or nil when absent.
func (t *QueryTree) Constraint() Constraint {
	return t.constraint
}

// Columns returns a copy of the projected columns in output order.
func (t *QueryTree) Columns() []Column {
	columns := make([]Column, len(t.columns))
	copy(columns, t.columns)
	return columns
}

// Orderings returns a copy of the orderings in precedence order.
func (t *QueryTree) Orderings() []Ordering {
	orderings := make([]Ordering, len(t.orderings))
	copy(orderings, t.orderings)
	return orderings
}

// Selectors returns the selectors declared in the source, keyed by name.
func (t *QueryTree) Selectors() map[string]*Selector {
	selectors := make(map[string]*Selector)
	for _, s := range SelectorsOf(t.source) {
		selectors[s.SelectorName] = s
	}
	return selectors
}
