// Package proton identifies and classifies Proton installations by the
// marker files they contain, and canonicalizes candidate paths to their
// real filesystem identities.
package proton

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/protonpatch/protonpatch/internal/errors"
)

// Marker files that make up a Proton installation.
const (
	// LauncherName is the launcher entry point every build ships.
	LauncherName = "proton"
	// SettingsName is the user-overridable configuration file.
	SettingsName = "user_settings.py"
	// SampleName is the template the settings file is created from.
	SampleName = "user_settings.sample.py"
	// ToolManifestName is the compatibility-tool manifest.
	ToolManifestName = "toolmanifest.vdf"
	// FixesDirName marks a build that bundles its own fix-up package.
	FixesDirName = "protonfixes"
)

// ImportLine is the activation line appended to the settings file.
const ImportLine = "import protonfixes"

// IsValidInstallation reports whether dir is a patchable Proton
// installation: an existing directory containing the launcher entry
// point, at least one settings file (live or sample), a tool manifest,
// and no bundled protonfixes of its own.
func IsValidInstallation(dir string) bool {
	if !isDir(dir) {
		return false
	}
	if !isFile(filepath.Join(dir, LauncherName)) {
		return false
	}
	if !isFile(filepath.Join(dir, SampleName)) && !isFile(filepath.Join(dir, SettingsName)) {
		return false
	}
	if !isFile(filepath.Join(dir, ToolManifestName)) {
		return false
	}
	return !HasBundledFixes(dir)
}

// HasBundledFixes reports whether dir contains a protonfixes entry of its
// own, as either a file or a subdirectory. Such builds are excluded from
// patching because loading a second fix-up package would be redundant or
// conflicting.
func HasBundledFixes(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FixesDirName))
	return err == nil
}

// Imported reports whether any line of r begins with the activation line.
// Trailing content after the literal is allowed, so both
// "import protonfixes" and "import protonfixes # enabled" count.
func Imported(r io.Reader) (bool, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), ImportLine) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, errors.Wrap(err, "scanning settings")
	}
	return false, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
