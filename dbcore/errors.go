package dbcore

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Sentinel errors. Callers match against these with errors.Is; the wrapping
// done by newError keeps the call-site context without hiding the sentinel.
var (
	ErrNotFound      = errors.New("NOT_FOUND")
	ErrInvalidFormat = errors.New("INVALID_FORMAT")
	ErrTruncated     = errors.New("TRUNCATED")
	ErrOutOfRange    = errors.New("OUT_OF_RANGE")
	ErrSchemaInvalid = errors.New("SCHEMA_INVALID")
	ErrReadOnly      = errors.New("READ_ONLY")
	ErrUnsupported   = errors.New("UNSUPPORTED")
	ErrIO            = errors.New("IO")
)

// Error wraps a sentinel with the call-site context and, for I/O failures,
// the path/offset/length that were in flight. Mirrors the teacher's
// dbase/errors.go Error type (context string + wrapped err) but adds the
// structured fields §7 asks I/O failures to carry.
type Error struct {
	context string
	path    string
	offset  int64
	length  int64
	err     error
}

func newError(context string, err error) Error {
	return Error{context: context, err: err}
}

func newIOError(context string, path string, offset int64, length int64, err error) Error {
	return Error{context: context, path: path, offset: offset, length: length, err: fmt.Errorf("%w: %v", ErrIO, err)}
}

func (e Error) Error() string {
	if e.path == "" {
		return fmt.Sprintf("%s: %v", e.context, e.err)
	}
	return fmt.Sprintf("%s: %v (path=%s offset=%d length=%d)", e.context, e.err, e.path, e.offset, e.length)
}

func (e Error) Unwrap() error {
	return e.err
}

func (e Error) Context() string {
	return e.context
}

// aggregateErrors combines a slice that may contain nil entries into a
// single error (nil if every entry is nil), the way ignite's engine/storage
// packages fold compound close/flush errors with go.uber.org/multierr.
func aggregateErrors(errs []error) error {
	var combined error
	for _, err := range errs {
		combined = multierr.Append(combined, err)
	}
	return combined
}
