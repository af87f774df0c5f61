package name

import (
	"fmt"
	"strings"
)

// A Path is an immutable, absolute hierarchical path built from Names.
// The zero value is the root path.
type Path struct {
	elements []Name
}

// RootPath returns the root path ("/").
func RootPath() Path {
	return Path{}
}

// NewPath creates an absolute path from the given elements, root first.
func NewPath(elements ...Name) Path {
	copied := make([]Name, len(elements))
	copy(copied, elements)
	return Path{elements: copied}
}

// Elements returns a copy of the path elements, root first.
func (p Path) Elements() []Name {
	copied := make([]Name, len(p.elements))
	copy(copied, p.elements)
	return copied
}

// Depth returns the number of elements below the root.
func (p Path) Depth() int {
	return len(p.elements)
}

// IsRoot reports whether the path is the root path.
func (p Path) IsRoot() bool {
	return len(p.elements) == 0
}

// Name returns the last element of the path, or the empty Name for the root.
func (p Path) Name() Name {
	if len(p.elements) == 0 {
		return Name{}
	}
	return p.elements[len(p.elements)-1]
}

// Child returns the path extended by one element.
func (p Path) Child(n Name) Path {
	elements := make([]Name, len(p.elements)+1)
	copy(elements, p.elements)
	elements[len(p.elements)] = n
	return Path{elements: elements}
}

// Parent returns the parent path. The second return value is false for the
// root path, which has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p.elements) == 0 {
		return Path{}, false
	}
	return Path{elements: p.elements[:len(p.elements)-1]}, true
}

// Equals reports whether p and q denote the same path.
func (p Path) Equals(q Path) bool {
	if len(p.elements) != len(q.elements) {
		return false
	}
	for i := range p.elements {
		if p.elements[i] != q.elements[i] {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether p is a proper ancestor of q.
func (p Path) IsAncestorOf(q Path) bool {
	if len(p.elements) >= len(q.elements) {
		return false
	}
	for i := range p.elements {
		if p.elements[i] != q.elements[i] {
			return false
		}
	}
	return true
}

// IsParentOf reports whether p is the direct parent of q.
func (p Path) IsParentOf(q Path) bool {
	return len(q.elements) == len(p.elements)+1 && p.IsAncestorOf(q)
}

// String returns the path in expanded form, e.g. "/{uri}a/b".
func (p Path) String() string {
	if len(p.elements) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, e := range p.elements {
		b.WriteByte('/')
		b.WriteString(e.String())
	}
	return b.String()
}

// ParsePath parses an absolute path whose elements are in expanded or plain
// local form.
func ParsePath(s string) (Path, error) {
	if s == "" || s[0] != '/' {
		return Path{}, fmt.Errorf("path %q is not absolute", s)
	}
	if s == "/" {
		return Path{}, nil
	}
	parts := strings.Split(s[1:], "/")
	elements := make([]Name, 0, len(parts))
	for _, part := range parts {
		n, err := Parse(part)
		if err != nil {
			return Path{}, fmt.Errorf("invalid path %q: %w", s, err)
		}
		elements = append(elements, n)
	}
	return Path{elements: elements}, nil
}
