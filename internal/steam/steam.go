// Package steam locates Steam installations and the directories that can
// hold Proton builds: the primary installation root, additional library
// folders declared in libraryfolders.vdf, and the conventional
// compatibilitytools.d directories for user and system scope.
package steam

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/paths"
	"github.com/protonpatch/protonpatch/internal/vdf"
)

const (
	// LibraryManifest is the library-folders manifest, relative to the
	// primary Steam root.
	LibraryManifest = "steamapps/libraryfolders.vdf"

	// SoldierSubdir is the SteamLinuxRuntime "soldier" companion runtime
	// directory, relative to a library root.
	SoldierSubdir = "steamapps/common/SteamLinuxRuntime_soldier"

	// protonGlob matches default Proton builds under a library root.
	protonGlob = "steamapps/common/Proton*"

	// manifestExt marks compatibility-tool manifests inside a compat dir.
	manifestExt = ".vdf"
)

// DefaultRoots returns the candidate Steam installation roots in
// preference order: the classic ~/.steam/steam location, then the XDG
// data-directory layout.
func DefaultRoots(home string) []string {
	return []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(paths.DataHome(), "Steam"),
	}
}

// DefaultUserCompatDirs returns the per-user compatibilitytools.d
// locations: one under each default root plus the ~/.steam/root alias.
func DefaultUserCompatDirs(home string) []string {
	dirs := make([]string, 0, 3)
	for _, root := range DefaultRoots(home) {
		dirs = append(dirs, filepath.Join(root, "compatibilitytools.d"))
	}
	return append(dirs, filepath.Join(home, ".steam", "root", "compatibilitytools.d"))
}

// DefaultSystemCompatDirs returns the system-wide compatibilitytools.d
// locations.
func DefaultSystemCompatDirs() []string {
	return []string{
		"/usr/share/steam/compatibilitytools.d",
		"/usr/local/share/steam/compatibilitytools.d",
	}
}

// Resolver enumerates Steam roots, library folders and compatibility-tool
// candidates. The path lists are exported so configuration can replace
// the conventional locations.
type Resolver struct {
	// Roots are candidate Steam installation roots in preference order.
	Roots []string
	// UserCompatDirs are per-user compatibility-tool directories.
	UserCompatDirs []string
	// SystemCompatDirs are system-wide compatibility-tool directories.
	SystemCompatDirs []string

	logger *slog.Logger
}

// NewResolver creates a Resolver over the conventional locations.
// Discovery progress and skipped candidates are logged at debug level.
func NewResolver(logger *slog.Logger) *Resolver {
	home := paths.Home()
	return &Resolver{
		Roots:            DefaultRoots(home),
		UserCompatDirs:   DefaultUserCompatDirs(home),
		SystemCompatDirs: DefaultSystemCompatDirs(),
		logger:           logger,
	}
}

// PrimaryRoot returns the first existing directory among the candidate
// roots. Returns errors.ErrSteamNotFound when none exist.
func (r *Resolver) PrimaryRoot() (string, error) {
	for _, root := range r.Roots {
		if isDir(root) {
			r.logger.Debug("resolved primary steam root", "path", root)
			return root, nil
		}
	}
	return "", errors.ErrSteamNotFound
}

// LibraryRoots returns primary followed by every library folder declared
// in its manifest. The manifest is optional: when missing or unreadable
// the primary root alone is returned. Declared folders are not checked
// for existence here.
func (r *Resolver) LibraryRoots(primary string) []string {
	libraries := []string{primary}

	manifest := filepath.Join(primary, LibraryManifest)
	declared, err := vdf.ScanFile(manifest, vdf.LibraryFolder)
	if err != nil {
		r.logger.Debug("no readable library manifest", "path", manifest, "error", err)
		return libraries
	}
	r.logger.Debug("scanned library manifest", "path", manifest, "folders", len(declared))
	return append(libraries, declared...)
}

// ProtonDirs expands the default-install glob under each library root and
// returns every match that is a directory, in library-then-glob order.
func (r *Resolver) ProtonDirs(libraries []string) []string {
	var dirs []string
	for _, library := range libraries {
		matches, err := filepath.Glob(filepath.Join(library, protonGlob))
		if err != nil {
			// Only a malformed pattern errors here, which a library path
			// containing glob metacharacters can trigger.
			r.logger.Debug("skipping library", "path", library, "error", err)
			continue
		}
		for _, match := range matches {
			if isDir(match) {
				dirs = append(dirs, match)
			}
		}
	}
	return dirs
}

// CompatToolCandidates enumerates installation candidates from the given
// compatibility-tool directories. Every child directory is a candidate;
// every child .vdf manifest is scanned and each declared install_path
// becomes a candidate. Directories that do not exist contribute nothing.
// The result is unvalidated.
func (r *Resolver) CompatToolCandidates(dirs []string) []string {
	var candidates []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			r.logger.Debug("skipping compat dir", "path", dir, "error", err)
			continue
		}
		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			if isDir(child) {
				candidates = append(candidates, child)
				continue
			}
			if filepath.Ext(entry.Name()) != manifestExt {
				continue
			}
			declared, err := vdf.ScanFile(child, vdf.InstallPath)
			if err != nil {
				r.logger.Debug("skipping manifest", "path", child, "error", err)
				continue
			}
			candidates = append(candidates, declared...)
		}
	}
	return candidates
}

// SoldierRoot returns the first library root containing the companion
// runtime subdirectory, and whether one was found.
func (r *Resolver) SoldierRoot(libraries []string) (string, bool) {
	for _, library := range libraries {
		if isDir(filepath.Join(library, SoldierSubdir)) {
			r.logger.Debug("found companion runtime", "library", library)
			return library, true
		}
	}
	return "", false
}

// isDir reports whether path exists and is a directory, following
// symlinks the way Steam's own tooling does.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
