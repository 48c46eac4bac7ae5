package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Thin re-exports so callers import a single errors package. The
// cockroachdb implementation attaches stack traces at wrap sites,
// which surface under verbose logging.

// New creates an error with the given message and a captured stack trace.
func New(msg string) error {
	return crdb.New(msg)
}

// Newf creates an error from a format string and a captured stack trace.
func Newf(format string, args ...any) error {
	return crdb.Newf(format, args...)
}

// Wrap annotates err with a message, returning nil if err is nil.
func Wrap(err error, msg string) error {
	return crdb.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message, returning nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return crdb.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return crdb.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return crdb.As(err, target)
}

// Unwrap returns the result of calling Unwrap on err, if available.
func Unwrap(err error) error {
	return crdb.Unwrap(err)
}

// Join combines errs into a single error, discarding nil entries.
func Join(errs ...error) error {
	return crdb.Join(errs...)
}
