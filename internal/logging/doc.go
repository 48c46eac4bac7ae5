// Package logging builds the slog loggers used across protonpatch.
//
// Text output is colorized for terminals; JSON output targets log
// collectors. Verbosity flags map onto levels through
// [LevelFromVerbosity], which also exposes [LevelTrace] below
// slog's Debug for discovery tracing.
//
// The root command constructs one logger per invocation and stores it
// in the command context:
//
//	ctx := logging.NewContext(cmd.Context(), logger)
//	...
//	log := logging.FromContext(cmd.Context())
//
// Tests pass [ForTest] loggers so records land in t.Log, and quiet
// mode swaps in [NewDiscard].
package logging
