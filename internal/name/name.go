package name

import (
	"fmt"
	"strings"
)

// A Name is an immutable, namespace-qualified identifier for a property or
// node type. The zero value is the empty name in the empty namespace.
type Name struct {
	uri   string
	local string
}

// New creates a Name from a namespace URI and a local part.
func New(uri, local string) Name {
	return Name{uri: uri, local: local}
}

// Local creates a Name in the empty namespace.
func Local(local string) Name {
	return Name{local: local}
}

// URI returns the namespace URI of the name.
func (n Name) URI() string {
	return n.uri
}

// LocalName returns the local part of the name.
func (n Name) LocalName() string {
	return n.local
}

// IsEmpty reports whether the name has an empty local part.
func (n Name) IsEmpty() bool {
	return n.local == ""
}

// String returns the expanded form of the name: "{uri}local", or just the
// local part when the namespace is empty.
func (n Name) String() string {
	if n.uri == "" {
		return n.local
	}
	return "{" + n.uri + "}" + n.local
}

// Parse parses a name in expanded form ("{uri}local") or plain local form.
func Parse(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("empty name")
	}
	if s[0] != '{' {
		if strings.ContainsAny(s, "{}") {
			return Name{}, fmt.Errorf("invalid name %q", s)
		}
		return Name{local: s}, nil
	}
	end := strings.IndexByte(s, '}')
	if end < 0 || end == len(s)-1 {
		return Name{}, fmt.Errorf("invalid expanded name %q", s)
	}
	return Name{uri: s[1:end], local: s[end+1:]}, nil
}

// Resolver maps namespace prefixes to URIs and back. It is implemented by the
// namespace-mapping collaborator of the index.
type Resolver interface {
	// URI returns the namespace URI registered for prefix.
	URI(prefix string) (string, error)
	// Prefix returns the prefix registered for uri.
	Prefix(uri string) (string, error)
}

// ParsePrefixed parses a name in prefixed form ("prefix:local" or "local"),
// resolving the prefix through r.
func ParsePrefixed(s string, r Resolver) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("empty name")
	}
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return Name{local: s}, nil
	}
	uri, err := r.URI(s[:idx])
	if err != nil {
		return Name{}, fmt.Errorf("resolving prefix %q: %w", s[:idx], err)
	}
	return Name{uri: uri, local: s[idx+1:]}, nil
}

// Format renders the name in prefixed form using r. Names in the empty
// namespace render as their local part.
func (n Name) Format(r Resolver) (string, error) {
	if n.uri == "" {
		return n.local, nil
	}
	prefix, err := r.Prefix(n.uri)
	if err != nil {
		return "", fmt.Errorf("formatting %s: %w", n, err)
	}
	if prefix == "" {
		return n.local, nil
	}
	return prefix + ":" + n.local, nil
}
