package jackrabbit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := &QueryError{Code: ErrorCodeUnboundVariable, Message: "no value bound"}
	assert.Equal(t, ErrorCodeUnboundVariable, CodeOf(err))
	assert.Equal(t, ErrorCodeUnboundVariable, CodeOf(fmt.Errorf("executing: %w", err)),
		"codes survive wrapping")
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsUnboundVariable(&QueryError{Code: ErrorCodeUnboundVariable}))
	assert.False(t, IsUnboundVariable(errors.New("plain")))

	for _, code := range []ErrorCode{
		ErrorCodeUnsupportedQueryShape,
		ErrorCodeUnsupportedConstraint,
		ErrorCodeUnsupportedOrderingOperand,
	} {
		assert.True(t, IsUnsupported(&QueryError{Code: code}), "code %s", code)
	}
	assert.False(t, IsUnsupported(&QueryError{Code: ErrorCodeUnboundVariable}))

	assert.True(t, IsIndexAccessFailure(&QueryError{Code: ErrorCodeIndexAccessFailure}))
}

func TestQueryErrorUnwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := &QueryError{Code: ErrorCodeIndexAccessFailure, Message: "index access failed", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "IndexAccessFailure")
	assert.Contains(t, err.Error(), "disk gone")
}
