// Package fixes locates the external protonfixes package on the host.
//
// The package is installed out of band (distribution package or manual
// checkout); this tool only needs its directory to hand to the companion
// runtime patcher. Its contents are never validated here.
package fixes

import (
	"os"
	"path/filepath"

	"github.com/protonpatch/protonpatch/internal/paths"
	"github.com/protonpatch/protonpatch/internal/proton"
)

// entryPoint marks a directory as an importable Python package.
const entryPoint = "__init__.py"

// DefaultSearchPaths returns the directories searched for the fix-up
// package: the user's XDG data home followed by the system data dirs.
func DefaultSearchPaths() []string {
	return append([]string{paths.DataHome()}, paths.DataDirs()...)
}

// Locate returns the first <searchPath>/protonfixes directory containing
// the package entry point, and whether one was found.
func Locate(searchPaths []string) (string, bool) {
	for _, searchPath := range searchPaths {
		dir := filepath.Join(searchPath, proton.FixesDirName)
		if isFile(filepath.Join(dir, entryPoint)) {
			return dir, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
