// Package access defines the access-control boundary consulted during query
// execution. The engine asks the configured Policy whether the caller may
// read each node bound to a candidate row; denied rows are excluded from the
// result without error.
package access

import (
	"context"

	"github.com/XenoAmess/jackrabbit/internal/index"
)

// Decision represents the result of an access check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allow decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a deny decision with an optional reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Policy answers whether the caller of the current execution may read a node.
type Policy interface {
	CanRead(ctx context.Context, id index.NodeID) (Decision, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, id index.NodeID) (Decision, error)

// CanRead implements Policy.
func (f PolicyFunc) CanRead(ctx context.Context, id index.NodeID) (Decision, error) {
	return f(ctx, id)
}

// AllowAll returns a policy that grants every read.
func AllowAll() Policy {
	return PolicyFunc(func(context.Context, index.NodeID) (Decision, error) {
		return Allow(), nil
	})
}

// principalContextKey is the unexported context key for the caller principal.
type principalContextKey struct{}

// WithPrincipal stores the caller principal in the context so that policies
// can identify the caller without a side channel.
func WithPrincipal(ctx context.Context, principal interface{}) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the caller principal stored by
// WithPrincipal, or nil.
func PrincipalFromContext(ctx context.Context) interface{} {
	return ctx.Value(principalContextKey{})
}
