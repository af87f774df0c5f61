// Package index declares the interfaces of the external index collaborators
// the query engine is compiled against: the node reader, the hierarchy
// resolver, namespace mappings, text analysis and synonym expansion, and the
// sort-key provider. The engine treats these as opaque capabilities; package
// gormindex provides a default implementation.
package index

import (
	"context"

	"github.com/google/uuid"

	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// NodeID identifies a node in the index.
type NodeID = uuid.UUID

// A Row is one candidate of a multi-column query: a set of selector-name to
// node bindings. Outer joins produce rows where some selectors are unbound.
type Row struct {
	bindings map[string]NodeID
}

// NewRow creates a row from selector bindings. The map is copied.
func NewRow(bindings map[string]NodeID) Row {
	copied := make(map[string]NodeID, len(bindings))
	for k, v := range bindings {
		copied[k] = v
	}
	return Row{bindings: copied}
}

// Node returns the node bound to the selector, if any.
func (r Row) Node(selector string) (NodeID, bool) {
	id, ok := r.bindings[selector]
	return id, ok
}

// Selectors returns the selector names bound in this row.
func (r Row) Selectors() []string {
	names := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		names = append(names, k)
	}
	return names
}

// Merge returns a new row combining the bindings of r and other.
func (r Row) Merge(other Row) Row {
	merged := make(map[string]NodeID, len(r.bindings)+len(other.bindings))
	for k, v := range r.bindings {
		merged[k] = v
	}
	for k, v := range other.bindings {
		merged[k] = v
	}
	return Row{bindings: merged}
}

// NodeIterator streams node identifiers in the index's native order.
// Callers must Close the iterator; Close is idempotent.
type NodeIterator interface {
	Next() bool
	ID() NodeID
	Err() error
	Close() error
}

// RowIterator streams candidate rows in the index's native order.
// Callers must Close the iterator; Close is idempotent.
type RowIterator interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// Reader is the read capability of the index for one execution.
type Reader interface {
	// NodesOfType streams the nodes whose type matches nodeType, in the
	// index's native order.
	NodesOfType(ctx context.Context, nodeType name.Name) (NodeIterator, error)

	// Property returns the value of the node's property. The bool result is
	// false when the node has no such property.
	Property(ctx context.Context, id NodeID, prop name.Name) (value.Value, bool, error)

	// PropertyNames lists the properties present on the node.
	PropertyNames(ctx context.Context, id NodeID) ([]name.Name, error)

	// NodeName returns the qualified name of the node.
	NodeName(ctx context.Context, id NodeID) (name.Name, error)
}

// HierarchyResolver answers path and ancestry questions about nodes.
type HierarchyResolver interface {
	// Parent returns the parent of id; the bool result is false for the root.
	Parent(ctx context.Context, id NodeID) (NodeID, bool, error)

	// Path returns the absolute path of the node.
	Path(ctx context.Context, id NodeID) (name.Path, error)

	// NodeAt returns the node at the given absolute path, if one exists.
	NodeAt(ctx context.Context, p name.Path) (NodeID, bool, error)

	// IsDescendant reports whether node is a proper descendant of ancestor.
	IsDescendant(ctx context.Context, node, ancestor NodeID) (bool, error)
}

// TextAnalyzer tokenizes text for full-text matching.
type TextAnalyzer interface {
	Tokenize(s string) []string
}

// SynonymProvider expands a term into its synonyms. Implementations return
// only the synonyms, not the term itself.
type SynonymProvider interface {
	Synonyms(term string) []string
}

// SortKeyProvider maps a string value to its collation key. Sort comparisons
// on string values go through the collation key so an index can plug in
// locale-aware ordering.
type SortKeyProvider interface {
	CollationKey(s string) string
}

// FormatVersion marks the on-disk format version of the index. It is carried
// through the query factory opaquely.
type FormatVersion int

// Known index format versions.
const (
	FormatV1 FormatVersion = 1
	FormatV2 FormatVersion = 2
	FormatV3 FormatVersion = 3
)

// Services bundles the index collaborators a query is compiled against.
type Services struct {
	Reader     Reader
	Hierarchy  HierarchyResolver
	Namespaces name.Resolver
	Analyzer   TextAnalyzer
	Synonyms   SynonymProvider
	SortKeys   SortKeyProvider
	Format     FormatVersion
}
