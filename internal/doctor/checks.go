package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/protonpatch/protonpatch/internal/fixes"
	"github.com/protonpatch/protonpatch/internal/install"
	"github.com/protonpatch/protonpatch/internal/paths"
	"github.com/protonpatch/protonpatch/internal/proton"
	"github.com/protonpatch/protonpatch/internal/steam"
)

// SteamRootCheck verifies a Steam installation root exists.
type SteamRootCheck struct {
	resolver *steam.Resolver

	geteuid func() int
}

var _ Check = (*SteamRootCheck)(nil)

// NewSteamRootCheck creates a check against the given resolver's roots.
func NewSteamRootCheck(resolver *steam.Resolver) *SteamRootCheck {
	return &SteamRootCheck{
		resolver: resolver,
		geteuid:  os.Geteuid,
	}
}

func (c *SteamRootCheck) Name() string     { return "steam-root" }
func (c *SteamRootCheck) Category() string { return "steam" }

// Run looks for a usable Steam root among the resolver's candidates.
func (c *SteamRootCheck) Run() *CheckResult {
	details := map[string]any{
		"candidates": c.resolver.Roots,
	}

	root, err := c.resolver.PrimaryRoot()
	if err != nil {
		// System-wide patching never consults the per-user Steam root.
		if c.geteuid() == 0 {
			return &CheckResult{
				Name:     c.Name(),
				Category: c.Category(),
				Status:   SeverityInfo,
				Message:  "no Steam root found, but running as root only needs the system tool directories",
				Details:  details,
			}
		}
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  "no Steam installation found",
			Details:  details,
			FixHint:  "install Steam, or set steam_roots in the config if it lives somewhere unusual",
		}
	}

	details["root"] = root
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "Steam root at " + root,
		Details:  details,
	}
}

// LibraryManifestCheck inspects the library-folders manifest and reports
// which declared libraries exist on disk.
type LibraryManifestCheck struct {
	resolver *steam.Resolver
}

var _ Check = (*LibraryManifestCheck)(nil)

// NewLibraryManifestCheck creates a check against the given resolver.
func NewLibraryManifestCheck(resolver *steam.Resolver) *LibraryManifestCheck {
	return &LibraryManifestCheck{resolver: resolver}
}

func (c *LibraryManifestCheck) Name() string     { return "library-manifest" }
func (c *LibraryManifestCheck) Category() string { return "steam" }

// Run stats every library folder the manifest declares beyond the
// primary one.
func (c *LibraryManifestCheck) Run() *CheckResult {
	root, err := c.resolver.PrimaryRoot()
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "skipped: no Steam root",
		}
	}

	manifest := filepath.Join(root, steam.LibraryManifest)
	if _, err := os.Stat(manifest); err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no library manifest; only the primary library will be scanned",
			Details:  map[string]any{"manifest": manifest},
		}
	}

	libraries := c.resolver.LibraryRoots(root)

	var missing []string
	for _, library := range libraries[1:] {
		if _, err := os.Stat(library); err != nil {
			missing = append(missing, library)
		}
	}

	details := map[string]any{
		"manifest":  manifest,
		"libraries": libraries,
	}

	if len(missing) > 0 {
		details["missing"] = missing
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("%d declared library folder(s) do not exist", len(missing)),
			Details:  details,
			FixHint:  "remove stale entries from " + manifest + " via the Steam client",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("%d library folder(s) configured", len(libraries)),
		Details:  details,
	}
}

// CompatDirsCheck reports which compatibilitytools.d directories exist.
// It can create the first configured per-user directory when none exist.
type CompatDirsCheck struct {
	resolver *steam.Resolver

	// target is the directory Fix would create, set by Run.
	target string
}

var _ Check = (*CompatDirsCheck)(nil)
var _ Fixer = (*CompatDirsCheck)(nil)

// NewCompatDirsCheck creates a check against the given resolver.
func NewCompatDirsCheck(resolver *steam.Resolver) *CompatDirsCheck {
	return &CompatDirsCheck{resolver: resolver}
}

func (c *CompatDirsCheck) Name() string     { return "compat-tool-dirs" }
func (c *CompatDirsCheck) Category() string { return "steam" }

// Run stats every known compatibilitytools.d location.
func (c *CompatDirsCheck) Run() *CheckResult {
	c.target = ""

	var userExisting, systemExisting []string
	for _, dir := range c.resolver.UserCompatDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			userExisting = append(userExisting, dir)
		}
	}
	for _, dir := range c.resolver.SystemCompatDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			systemExisting = append(systemExisting, dir)
		}
	}

	details := map[string]any{
		"user_dirs":       c.resolver.UserCompatDirs,
		"user_existing":   userExisting,
		"system_dirs":     c.resolver.SystemCompatDirs,
		"system_existing": systemExisting,
	}

	if len(userExisting) == 0 && len(c.resolver.UserCompatDirs) > 0 {
		c.target = c.resolver.UserCompatDirs[0]
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "no per-user compatibilitytools.d directory exists",
			Details:  details,
			Fixable:  true,
			FixHint:  "mkdir -p " + c.target,
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message: fmt.Sprintf("%d user and %d system tool directories present",
			len(userExisting), len(systemExisting)),
		Details: details,
	}
}

// CanFix returns true when Run found no per-user tool directory.
func (c *CompatDirsCheck) CanFix() bool {
	return c.target != ""
}

// Fix creates the first configured per-user tool directory.
func (c *CompatDirsCheck) Fix() []FixResult {
	if c.target == "" {
		return nil
	}
	if err := paths.EnsureDir(c.target, 0); err != nil {
		return []FixResult{fixFailed(c.target, "failed to create directory", err)}
	}
	return []FixResult{fixApplied(c.target, "created directory")}
}

// ProtonInstallsCheck enumerates Proton candidates and reports their
// patch states.
type ProtonInstallsCheck struct {
	runner     *install.Runner
	privileged bool
}

var _ Check = (*ProtonInstallsCheck)(nil)

// NewProtonInstallsCheck creates a check that enumerates through runner.
func NewProtonInstallsCheck(runner *install.Runner, privileged bool) *ProtonInstallsCheck {
	return &ProtonInstallsCheck{runner: runner, privileged: privileged}
}

func (c *ProtonInstallsCheck) Name() string     { return "proton-installations" }
func (c *ProtonInstallsCheck) Category() string { return "proton" }

// Run enumerates candidates and tallies their patch states.
func (c *ProtonInstallsCheck) Run() *CheckResult {
	candidates, err := c.runner.Candidates(c.privileged)
	if err != nil {
		// The steam-root check already errors for a missing root.
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "cannot enumerate installations: " + err.Error(),
		}
	}

	byState := map[string][]string{}
	for _, candidate := range candidates {
		state, _ := proton.Inspect(candidate)
		key := state.String()
		byState[key] = append(byState[key], candidate)
	}

	patched := len(byState[proton.StatePatched.String()])
	unpatched := len(byState[proton.StateUnpatched.String()])
	bundled := len(byState[proton.StateBundledFixes.String()])
	valid := patched + unpatched + bundled

	details := map[string]any{
		"candidates": len(candidates),
		"states":     byState,
	}

	if valid == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "no Proton installations found",
			Details:  details,
			FixHint:  "install Proton through the Steam client or drop a build into compatibilitytools.d",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message: fmt.Sprintf("%d installation(s): %d patched, %d unpatched, %d with bundled fixes",
			valid, patched, unpatched, bundled),
		Details: details,
	}
}

// FixesPackageCheck looks for an installed protonfixes package.
type FixesPackageCheck struct {
	searchPaths []string
}

var _ Check = (*FixesPackageCheck)(nil)

// NewFixesPackageCheck creates a check over the given search paths.
func NewFixesPackageCheck(searchPaths []string) *FixesPackageCheck {
	return &FixesPackageCheck{searchPaths: searchPaths}
}

func (c *FixesPackageCheck) Name() string     { return "fixes-package" }
func (c *FixesPackageCheck) Category() string { return "fixes" }

func (c *FixesPackageCheck) Run() *CheckResult {
	details := map[string]any{
		"search_paths": c.searchPaths,
	}

	dir, ok := fixes.Locate(c.searchPaths)
	if !ok {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "protonfixes package not found",
			Details:  details,
			FixHint:  "install protonfixes so patched Proton builds can import it at launch",
		}
	}

	details["package"] = dir
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "protonfixes package at " + dir,
		Details:  details,
	}
}

// RuntimePatcherCheck verifies the companion-runtime helper is available.
type RuntimePatcherCheck struct {
	command string

	lookPath func(string) (string, error)
}

var _ Check = (*RuntimePatcherCheck)(nil)

// NewRuntimePatcherCheck creates a check for the given helper command.
func NewRuntimePatcherCheck(command string) *RuntimePatcherCheck {
	return &RuntimePatcherCheck{
		command:  command,
		lookPath: exec.LookPath,
	}
}

func (c *RuntimePatcherCheck) Name() string     { return "runtime-patcher" }
func (c *RuntimePatcherCheck) Category() string { return "runtime" }

// Run resolves the helper command on PATH.
func (c *RuntimePatcherCheck) Run() *CheckResult {
	resolved, err := c.lookPath(c.command)
	if err != nil {
		// Runtime delegation is best-effort, so a missing helper is not
		// an error.
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("runtime patcher %q not found on PATH", c.command),
			Details:  map[string]any{"command": c.command},
			FixHint:  "install the helper or change runtime_patcher in the config",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "runtime patcher at " + resolved,
		Details:  map[string]any{"command": c.command, "resolved": resolved},
	}
}

// PrivilegeCheck reports which patching mode the current user gets.
type PrivilegeCheck struct {
	geteuid func() int
}

var _ Check = (*PrivilegeCheck)(nil)

// NewPrivilegeCheck creates a privilege check.
func NewPrivilegeCheck() *PrivilegeCheck {
	return &PrivilegeCheck{geteuid: os.Geteuid}
}

func (c *PrivilegeCheck) Name() string     { return "privilege" }
func (c *PrivilegeCheck) Category() string { return "environment" }

func (c *PrivilegeCheck) Run() *CheckResult {
	euid := c.geteuid()
	details := map[string]any{"euid": euid}

	if euid == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "running as root: only system compatibility tool directories will be patched",
			Details:  details,
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("running as uid %d", euid),
		Details:  details,
	}
}
