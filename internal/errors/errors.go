package errors

import (
	"errors"
	"fmt"
)

// Process exit codes. The run loop in main maps ExitError values onto
// these; anything unclassified exits as a user error.
const (
	// ExitSuccess means the command did what was asked.
	ExitSuccess = 0

	// ExitUser covers bad input: unknown flags, invalid config,
	// nothing to patch.
	ExitUser = 1

	// ExitSystem covers environment failures: I/O errors, permission
	// problems, a missing helper binary.
	ExitSystem = 2
)

// Failure conditions callers branch on with Is.
var (
	// ErrSteamNotFound means no Steam root directory exists on this host.
	ErrSteamNotFound = errors.New("steam installation not found")

	// ErrNoInstallations means discovery finished without finding a
	// single patchable Proton installation.
	ErrNoInstallations = errors.New("no proton installations found")

	// ErrNotInstallation means a candidate directory is not a
	// patchable Proton installation.
	ErrNotInstallation = errors.New("not a proton installation")

	// ErrFixesNotFound means the protonfixes package could not be
	// located on any search path.
	ErrFixesNotFound = errors.New("protonfixes package not found")

	// ErrInvalidConfig means configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ExitError pairs an error with the process exit code it should
// produce, plus an optional next-step suggestion printed to the user.
// It unwraps to the underlying error.
type ExitError struct {
	// Err is the underlying cause.
	Err error

	// Code is handed to os.Exit.
	Code int

	// Suggestion, when set, is shown after the error message.
	Suggestion string
}

// NewExitError wraps err with an exit code and no suggestion.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewExitErrorWithSuggestion wraps err with an exit code and a
// suggestion for the user.
func NewExitErrorWithSuggestion(err error, code int, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       code,
		Suggestion: suggestion,
	}
}

// NewUserError marks err as the user's to fix.
func NewUserError(err error, suggestion string) *ExitError {
	return NewExitErrorWithSuggestion(err, ExitUser, suggestion)
}

// NewSystemError marks err as an environment failure.
func NewSystemError(err error, suggestion string) *ExitError {
	return NewExitErrorWithSuggestion(err, ExitSystem, suggestion)
}

// NewConfigError marks err as a configuration problem and points the
// user at the diagnostic command.
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Run: protonpatch doctor")
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap exposes the cause to Is and As.
func (e *ExitError) Unwrap() error {
	return e.Err
}
