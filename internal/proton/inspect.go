package proton

import (
	"os"
	"path/filepath"

	"github.com/protonpatch/protonpatch/internal/errors"
)

// State classifies an installation candidate for reporting.
type State int

const (
	// StateInvalid means required marker files are missing.
	StateInvalid State = iota
	// StateBundledFixes means the build ships its own fix-up package and
	// is excluded from patching.
	StateBundledFixes
	// StateUnpatched means the installation is valid and the activation
	// line is absent.
	StateUnpatched
	// StatePatched means the settings file already loads the fix-up
	// package.
	StatePatched
)

// String returns the state's display name.
func (s State) String() string {
	switch s {
	case StateBundledFixes:
		return "bundled fixes"
	case StateUnpatched:
		return "unpatched"
	case StatePatched:
		return "patched"
	default:
		return "invalid"
	}
}

// Inspect classifies dir. When the settings file exists but cannot be
// read, the installation is reported as unpatched together with the read
// error, so callers can still show a best-effort state.
func Inspect(dir string) (State, error) {
	if !isDir(dir) || !isFile(filepath.Join(dir, LauncherName)) || !isFile(filepath.Join(dir, ToolManifestName)) {
		return StateInvalid, nil
	}

	settings := filepath.Join(dir, SettingsName)
	hasSettings := isFile(settings)
	if !hasSettings && !isFile(filepath.Join(dir, SampleName)) {
		return StateInvalid, nil
	}
	if HasBundledFixes(dir) {
		return StateBundledFixes, nil
	}
	if !hasSettings {
		return StateUnpatched, nil
	}

	f, err := os.Open(settings)
	if err != nil {
		return StateUnpatched, errors.Wrapf(err, "opening %s", settings)
	}
	defer f.Close()

	imported, err := Imported(f)
	if err != nil {
		return StateUnpatched, err
	}
	if imported {
		return StatePatched, nil
	}
	return StateUnpatched, nil
}
