package gif

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError reports a caller-facing precondition violation: a
// dimension, palette, or index out of range discovered before any byte is
// read or written.
type ValidationError struct {
	Field string
	cause error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("gif: invalid %s: %v", e.Field, e.cause)
	}
	return fmt.Sprintf("gif: invalid %s", e.Field)
}

func (e *ValidationError) Unwrap() error { return e.cause }

func newValidationError(field string, format string, args ...interface{}) error {
	return &ValidationError{Field: field, cause: errors.Errorf(format, args...)}
}

// EncodingError reports an internal codec inconsistency: a malformed byte
// stream during decode, or a dictionary/bit-width invariant broken during
// encode. Decoders never panic on malformed input — they return one of
// these instead.
type EncodingError struct {
	Context string
	cause   error
}

func (e *EncodingError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("gif: %s: %v", e.Context, e.cause)
	}
	return fmt.Sprintf("gif: %s", e.Context)
}

func (e *EncodingError) Unwrap() error { return e.cause }

func newEncodingError(context string, format string, args ...interface{}) error {
	return &EncodingError{Context: context, cause: errors.Errorf(format, args...)}
}

// wrapEncodingError annotates an existing error (e.g. from a sub-block
// reader) with the byte offset or field where the reader state machine
// noticed it, keeping the original cause in the chain.
func wrapEncodingError(context string, cause error) error {
	return &EncodingError{Context: context, cause: cause}
}
