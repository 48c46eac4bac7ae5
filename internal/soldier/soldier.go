// Package soldier delegates the SteamLinuxRuntime companion-runtime patch
// step to an external helper command.
//
// The helper is an opaque collaborator: it receives the library root
// containing the runtime and, when located, the fix-up package directory.
// Whatever it does with them is its own business, and its failure never
// fails the calling run.
package soldier

import (
	"log/slog"
	"os"
	"os/exec"

	"github.com/protonpatch/protonpatch/internal/errors"
)

// DefaultCommand is the helper invoked to patch the companion runtime.
// It is resolved through PATH and overridable via configuration.
const DefaultCommand = "protonpatch-soldier"

// Patch invokes the helper command with the runtime's library root and
// the fix-up package directory as positional arguments. The second
// argument is omitted when fixesDir is empty.
//
// The helper's output is streamed to this process's stdout and stderr.
// The returned error is informational only: a missing helper or a
// non-zero exit is reported to the caller for display but must not abort
// the run.
func Patch(name, runtimeRoot, fixesDir string, logger *slog.Logger) error {
	args := []string{runtimeRoot}
	if fixesDir != "" {
		args = append(args, fixesDir)
	}

	path, err := exec.LookPath(name)
	if err != nil {
		logger.Warn("companion runtime helper not found", "command", name)
		return errors.Wrapf(err, "locating %s", name)
	}

	logger.Debug("delegating companion runtime patch", "command", path, "args", args)

	cmd := exec.Command(path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		logger.Warn("companion runtime helper failed", "command", name, "error", err)
		return errors.Wrapf(err, "running %s", name)
	}
	return nil
}
