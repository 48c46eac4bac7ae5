// Package errors is the single error vocabulary for protonpatch.
//
// It layers three things: sentinel values for the failure modes
// callers branch on, wrapping helpers that delegate to
// cockroachdb/errors so wrap sites carry stack traces, and [ExitError]
// for translating failures into process exit codes.
//
// Callers import this package instead of the standard library's errors
// and keep the familiar Is/As/Join surface:
//
//	if errors.Is(err, errors.ErrSteamNotFound) {
//	    // Steam is not installed on this host
//	}
//
// Exit codes follow the usual CLI split: 0 success, 1 user error,
// 2 system error. Commands attach a code where the failure is
// classified:
//
//	return errors.NewSystemError(err, "Check that Steam is installed")
//
// and main unwraps the outermost [ExitError] when the process exits.
package errors
