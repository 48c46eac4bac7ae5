package paths

import (
	"cmp"
	"os"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// ErrHomeDirNotFound means the user's home directory could not be
// determined, usually a stripped-down service environment.
var ErrHomeDirNotFound = errors.New("home directory not found")

// Home returns the user's home directory, or an empty string when it
// cannot be determined. Use ResolveHome when the error matters.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome is Home with the failure preserved; the returned error
// matches ErrHomeDirNotFound under errors.Is.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Mark(err, ErrHomeDirNotFound)
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory (~/.config on Linux).
func ConfigHome() string { return xdg.ConfigHome }

// DataHome returns the XDG data home directory (~/.local/share on Linux).
// Steam's fallback installation root and the user-level fix-up package
// both live under it.
func DataHome() string { return xdg.DataHome }

// DataDirs returns the system-wide XDG data directories
// (/usr/local/share and /usr/share on most Linux systems).
func DataDirs() []string { return xdg.DataDirs }

// DefaultDirPerm applies to directories this tool creates.
const DefaultDirPerm = 0o755

// EnsureDir makes path and any missing parents, treating a perm of 0
// as DefaultDirPerm. Existing directories are left as they are.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, cmp.Or(perm, DefaultDirPerm))
}
