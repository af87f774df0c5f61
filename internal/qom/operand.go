package qom

import (
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// DynamicOperand is an operand evaluated against a candidate row.
type DynamicOperand interface {
	dynamicOperand()
}

// PropertyValue evaluates to the value of a candidate's property.
type PropertyValue struct {
	SelectorName string
	PropertyName name.Name
}

func (o *PropertyValue) dynamicOperand() {}

// Length evaluates to the length of a property value.
type Length struct {
	Property *PropertyValue
}

func (o *Length) dynamicOperand() {}

// NodeName evaluates to the qualified name of the candidate node.
type NodeName struct {
	SelectorName string
}

func (o *NodeName) dynamicOperand() {}

// NodeLocalName evaluates to the local name of the candidate node.
type NodeLocalName struct {
	SelectorName string
}

func (o *NodeLocalName) dynamicOperand() {}

// LowerCase evaluates to the lower-cased string form of its operand.
type LowerCase struct {
	Operand DynamicOperand
}

func (o *LowerCase) dynamicOperand() {}

// UpperCase evaluates to the upper-cased string form of its operand.
type UpperCase struct {
	Operand DynamicOperand
}

func (o *UpperCase) dynamicOperand() {}

// FullTextSearchScore evaluates to the relevance score of a candidate.
// Declared for tree completeness; the compiler does not lower it yet.
type FullTextSearchScore struct {
	SelectorName string
}

func (o *FullTextSearchScore) dynamicOperand() {}

// StaticOperand is an operand whose value is known at execution time without
// consulting a candidate: a literal or a bind variable.
type StaticOperand interface {
	staticOperand()
}

// Literal is a constant value.
type Literal struct {
	Value value.Value
}

func (o *Literal) staticOperand() {}

// BindVariable is a named placeholder resolved at execution time.
type BindVariable struct {
	Name string
}

func (o *BindVariable) staticOperand() {}
