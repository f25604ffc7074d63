package models

import (
	"errors"
	"fmt"
)

// InputError reports input that cannot be processed at all: an
// unrecognizable log, missing columns, an unusable roster. The whole
// invocation fails with the diagnostic; there is never partial output.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// NewInputError creates an InputError with a formatted diagnostic
func NewInputError(format string, args ...interface{}) *InputError {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is (or wraps) an InputError
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
