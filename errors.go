package jackrabbit

import (
	"errors"

	"github.com/XenoAmess/jackrabbit/internal/plan"
)

// ErrorCode re-exports the query failure classification for external
// consumers.
type ErrorCode = plan.ErrorCode

// Error codes surfaced by query compilation and execution.
const (
	// ErrorCodeUnboundVariable indicates a referenced bind variable had no
	// supplied value. This is a caller error and is never retried.
	ErrorCodeUnboundVariable ErrorCode = plan.CodeUnboundVariable

	// ErrorCodeUnsupportedQueryShape indicates the source tree contains a
	// construct the query factory does not lower.
	ErrorCodeUnsupportedQueryShape ErrorCode = plan.CodeUnsupportedQueryShape

	// ErrorCodeUnsupportedConstraint indicates the constraint tree contains a
	// construct the constraint compiler does not lower.
	ErrorCodeUnsupportedConstraint ErrorCode = plan.CodeUnsupportedConstraint

	// ErrorCodeUnsupportedOrderingOperand indicates an ordering operand the
	// ordering compiler does not lower.
	ErrorCodeUnsupportedOrderingOperand ErrorCode = plan.CodeUnsupportedOrderingOperand

	// ErrorCodeIndexAccessFailure indicates the underlying index or
	// access-control service failed. The failure is propagated as-is; retry
	// policy belongs to the index collaborator.
	ErrorCodeIndexAccessFailure ErrorCode = plan.CodeIndexAccessFailure
)

// QueryError is the structured failure type returned by query compilation
// and execution. It carries a machine-readable code and supports
// errors.Is/errors.As through Unwrap.
type QueryError = plan.Error

// CodeOf returns the error code of err, or the empty code when err is not a
// QueryError.
func CodeOf(err error) ErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsUnboundVariable reports whether err is an unbound-variable failure.
func IsUnboundVariable(err error) bool {
	return CodeOf(err) == ErrorCodeUnboundVariable
}

// IsUnsupported reports whether err is any of the unsupported-construct
// failures: query shape, constraint or ordering operand.
func IsUnsupported(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeUnsupportedQueryShape, ErrorCodeUnsupportedConstraint, ErrorCodeUnsupportedOrderingOperand:
		return true
	default:
		return false
	}
}

// IsIndexAccessFailure reports whether err is a propagated index or
// access-control service failure.
func IsIndexAccessFailure(err error) bool {
	return CodeOf(err) == ErrorCodeIndexAccessFailure
}
