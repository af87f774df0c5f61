package plan

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// fakeIndex is an in-memory index used by the compiler and assembler tests.
// Nodes are returned in insertion (document) order.
type fakeIndex struct {
	nodes  []*fakeNode
	byID   map[index.NodeID]*fakeNode
	byPath map[string]*fakeNode

	// scanErr injects a failure into every scan.
	scanErr error
}

type fakeNode struct {
	id     index.NodeID
	parent *fakeNode
	name   name.Name
	typ    name.Name
	path   name.Path
	props  map[name.Name]value.Value
}

func newFakeIndex() *fakeIndex {
	f := &fakeIndex{
		byID:   make(map[index.NodeID]*fakeNode),
		byPath: make(map[string]*fakeNode),
	}
	root := &fakeNode{id: uuid.New(), path: name.RootPath(), typ: name.Local("root")}
	f.byID[root.id] = root
	f.byPath["/"] = root
	f.nodes = append(f.nodes, root)
	return f
}

func (f *fakeIndex) root() *fakeNode {
	return f.byPath["/"]
}

func (f *fakeIndex) addNode(parent *fakeNode, nodeName, nodeType string, props map[string]value.Value) *fakeNode {
	if parent == nil {
		parent = f.root()
	}
	n := &fakeNode{
		id:     uuid.New(),
		parent: parent,
		name:   name.Local(nodeName),
		typ:    name.Local(nodeType),
		path:   parent.path.Child(name.Local(nodeName)),
		props:  make(map[name.Name]value.Value),
	}
	for k, v := range props {
		n.props[name.Local(k)] = v
	}
	f.nodes = append(f.nodes, n)
	f.byID[n.id] = n
	f.byPath[n.path.String()] = n
	return n
}

func (f *fakeIndex) services() index.Services {
	return index.Services{Reader: f, Hierarchy: f}.WithDefaults()
}

func (f *fakeIndex) NodesOfType(_ context.Context, nodeType name.Name) (index.NodeIterator, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var ids []index.NodeID
	for _, n := range f.nodes {
		if n.typ == nodeType {
			ids = append(ids, n.id)
		}
	}
	return &fakeNodeIterator{ids: ids, pos: -1}, nil
}

func (f *fakeIndex) Property(_ context.Context, id index.NodeID, prop name.Name) (value.Value, bool, error) {
	n, ok := f.byID[id]
	if !ok {
		return value.Value{}, false, nil
	}
	v, ok := n.props[prop]
	return v, ok, nil
}

func (f *fakeIndex) PropertyNames(_ context.Context, id index.NodeID) ([]name.Name, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	var names []name.Name
	for k := range n.props {
		names = append(names, k)
	}
	return names, nil
}

func (f *fakeIndex) NodeName(_ context.Context, id index.NodeID) (name.Name, error) {
	return f.byID[id].name, nil
}

func (f *fakeIndex) Parent(_ context.Context, id index.NodeID) (index.NodeID, bool, error) {
	n := f.byID[id]
	if n.parent == nil {
		return index.NodeID{}, false, nil
	}
	return n.parent.id, true, nil
}

func (f *fakeIndex) Path(_ context.Context, id index.NodeID) (name.Path, error) {
	return f.byID[id].path, nil
}

func (f *fakeIndex) NodeAt(_ context.Context, p name.Path) (index.NodeID, bool, error) {
	n, ok := f.byPath[p.String()]
	if !ok {
		return index.NodeID{}, false, nil
	}
	return n.id, true, nil
}

func (f *fakeIndex) IsDescendant(_ context.Context, node, ancestor index.NodeID) (bool, error) {
	np := f.byID[node].path.String()
	ap := f.byID[ancestor].path.String()
	if ap == "/" {
		return np != "/", nil
	}
	return strings.HasPrefix(np, ap+"/"), nil
}

type fakeNodeIterator struct {
	ids    []index.NodeID
	pos    int
	closed bool
}

func (it *fakeNodeIterator) Next() bool {
	if it.pos+1 >= len(it.ids) {
		return false
	}
	it.pos++
	return true
}

func (it *fakeNodeIterator) ID() index.NodeID { return it.ids[it.pos] }
func (it *fakeNodeIterator) Err() error       { return nil }
func (it *fakeNodeIterator) Close() error     { it.closed = true; return nil }

// collectRows drains an assembled result into per-row column text values.
func collectRows(t *testing.T, ctx context.Context, rows *Rows) [][]string {
	t.Helper()
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		row := rows.Row()
		var cells []string
		for i := range row.Columns() {
			v, ok, err := row.ValueAt(ctx, i)
			if err != nil {
				t.Fatalf("fetching column %d: %v", i, err)
			}
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, v.Text())
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterating rows: %v", err)
	}
	return out
}
