package plan

import "fmt"

// ErrorCode classifies a query compilation or execution failure.
type ErrorCode string

// Error codes surfaced to callers.
const (
	// CodeUnboundVariable indicates a referenced bind variable has no
	// supplied value.
	CodeUnboundVariable ErrorCode = "UnboundVariable"

	// CodeUnsupportedQueryShape indicates the source tree contains a node the
	// query factory cannot lower.
	CodeUnsupportedQueryShape ErrorCode = "UnsupportedQueryShape"

	// CodeUnsupportedConstraint indicates the constraint tree contains a node
	// or operand the constraint compiler cannot lower.
	CodeUnsupportedConstraint ErrorCode = "UnsupportedConstraint"

	// CodeUnsupportedOrderingOperand indicates an ordering operand the
	// ordering compiler cannot lower.
	CodeUnsupportedOrderingOperand ErrorCode = "UnsupportedOrderingOperand"

	// CodeIndexAccessFailure indicates the underlying index or access-control
	// service failed; the failure is propagated, not retried.
	CodeIndexAccessFailure ErrorCode = "IndexAccessFailure"
)

// Error is a structured query failure carrying a machine-readable code.
// It supports errors.Is/errors.As through Unwrap.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// indexFailure wraps err as an index access failure unless it already is a
// plan error.
func indexFailure(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Code: CodeIndexAccessFailure, Message: "index access failed", Err: err}
}
