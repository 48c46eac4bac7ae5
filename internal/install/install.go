// Package install orchestrates a full patch run: discovery of Proton
// installations, validation, deduplication, the idempotent settings
// patch, and delegation of the companion-runtime step.
package install

import (
	"log/slog"
	"slices"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/fixes"
	"github.com/protonpatch/protonpatch/internal/patch"
	"github.com/protonpatch/protonpatch/internal/proton"
	"github.com/protonpatch/protonpatch/internal/soldier"
	"github.com/protonpatch/protonpatch/internal/steam"
)

// Options configures a single run.
type Options struct {
	// Privileged selects system-only discovery: root runs manage the
	// machine-wide tool directories and never touch user paths.
	Privileged bool
	// DryRun computes every result without writing or delegating.
	DryRun bool
	// SkipRuntime disables companion-runtime delegation.
	SkipRuntime bool
	// FixesDir overrides fix-up package discovery when set.
	FixesDir string
	// Select, when set, filters the canonical installation list before
	// patching. Used by interactive selection.
	Select func(installs []string) ([]string, error)
}

// Installation is the outcome for one canonical installation path.
type Installation struct {
	Path   string
	Result *patch.Result // nil when Err is set
	Err    error
}

// Report summarizes one run.
type Report struct {
	// Installations holds per-path outcomes in canonical order.
	Installations []Installation
	// Patched, Already and Failed count the outcomes.
	Patched, Already, Failed int
	// SoldierRoot is the library root containing the companion runtime,
	// when one was discovered.
	SoldierRoot string
	// FixesDir is the fix-up package directory handed to the helper;
	// empty when the package was not located.
	FixesDir string
	// Delegated is true when the helper was actually invoked.
	Delegated bool
	// DelegateErr is the helper's failure. Informational only: the
	// delegate's exit status never fails the run.
	DelegateErr error
}

// Runner coordinates one patch run over a Resolver's locations.
type Runner struct {
	Resolver *steam.Resolver
	// RuntimePatcher is the helper command for the companion runtime.
	RuntimePatcher string
	// FixesSearchPaths are the directories searched for the fix-up
	// package.
	FixesSearchPaths []string

	logger *slog.Logger

	// Seams for tests.
	apply    func(dir string) (*patch.Result, error)
	plan     func(dir string) (*patch.Result, error)
	delegate func(name, runtimeRoot, fixesDir string, logger *slog.Logger) error
}

// NewRunner creates a Runner with the default patcher and helper wiring.
func NewRunner(resolver *steam.Resolver, logger *slog.Logger) *Runner {
	return &Runner{
		Resolver:         resolver,
		RuntimePatcher:   soldier.DefaultCommand,
		FixesSearchPaths: fixes.DefaultSearchPaths(),
		logger:           logger,
		apply:            patch.Apply,
		plan:             patch.Plan,
		delegate:         soldier.Patch,
	}
}

// Run discovers installations, patches each one, and delegates the
// companion-runtime step. Per-installation failures are isolated in the
// report; the only fatal condition is a missing Steam installation in
// non-privileged mode.
func (r *Runner) Run(opts Options) (*Report, error) {
	candidates, soldierRoot, err := r.discover(opts)
	if err != nil {
		return nil, err
	}

	installs := proton.Canonicalize(candidates)
	if opts.Select != nil && len(installs) > 0 {
		installs, err = opts.Select(installs)
		if err != nil {
			return nil, errors.Wrap(err, "selecting installations")
		}
	}

	report := &Report{SoldierRoot: soldierRoot}

	mutate := r.apply
	if opts.DryRun {
		mutate = r.plan
	}

	for _, dir := range installs {
		res, err := mutate(dir)
		report.Installations = append(report.Installations, Installation{Path: dir, Result: res, Err: err})
		switch {
		case err != nil:
			report.Failed++
			r.logger.Warn("skipping installation", "path", dir, "error", err)
		case res.Outcome == patch.AlreadyPatched:
			report.Already++
			r.logger.Debug("already patched", "path", dir)
		default:
			report.Patched++
			r.logger.Info("patched", "path", dir, "created", res.Created, "dry_run", opts.DryRun)
		}
	}

	r.delegateRuntime(opts, report)
	return report, nil
}

// Candidates returns every canonical candidate path without validation,
// for inspection commands. Privileged mode enumerates only the system
// compatibility-tool directories.
func (r *Runner) Candidates(privileged bool) ([]string, error) {
	if privileged {
		return proton.Canonicalize(r.Resolver.CompatToolCandidates(r.Resolver.SystemCompatDirs)), nil
	}

	primary, err := r.Resolver.PrimaryRoot()
	if err != nil {
		return nil, err
	}
	libraries := r.Resolver.LibraryRoots(primary)

	candidates := r.Resolver.ProtonDirs(libraries)
	compatDirs := slices.Concat(r.Resolver.UserCompatDirs, r.Resolver.SystemCompatDirs)
	candidates = append(candidates, r.Resolver.CompatToolCandidates(compatDirs)...)
	return proton.Canonicalize(candidates), nil
}

// discover returns the patch candidates and the companion runtime root
// for the given privilege mode.
//
// Compatibility-tool candidates are validated; glob-discovered Proton
// dirs are not. The default layout is trusted by convention, and a broken
// one surfaces as a per-installation patch failure instead.
func (r *Runner) discover(opts Options) (candidates []string, soldierRoot string, err error) {
	if opts.Privileged {
		system := r.Resolver.CompatToolCandidates(r.Resolver.SystemCompatDirs)
		return r.filterValid(system), "", nil
	}

	primary, err := r.Resolver.PrimaryRoot()
	if err != nil {
		return nil, "", err
	}

	libraries := r.Resolver.LibraryRoots(primary)
	candidates = r.Resolver.ProtonDirs(libraries)

	compatDirs := slices.Concat(r.Resolver.UserCompatDirs, r.Resolver.SystemCompatDirs)
	candidates = append(candidates, r.filterValid(r.Resolver.CompatToolCandidates(compatDirs))...)

	soldierRoot, _ = r.Resolver.SoldierRoot(libraries)
	return candidates, soldierRoot, nil
}

// filterValid keeps the candidates that pass the installation predicate.
func (r *Runner) filterValid(candidates []string) []string {
	var valid []string
	for _, candidate := range candidates {
		if proton.IsValidInstallation(candidate) {
			valid = append(valid, candidate)
			continue
		}
		r.logger.Debug("rejecting compat tool candidate", "path", candidate)
	}
	return valid
}

// delegateRuntime hands the companion-runtime step to the external
// helper. The fix-up package directory is resolved here so dry runs can
// report it; only the exec itself is skipped.
func (r *Runner) delegateRuntime(opts Options, report *Report) {
	if opts.Privileged || opts.SkipRuntime || report.SoldierRoot == "" {
		return
	}

	fixesDir := opts.FixesDir
	if fixesDir == "" {
		if located, ok := fixes.Locate(r.FixesSearchPaths); ok {
			fixesDir = located
		} else {
			r.logger.Warn("fix-up package not located; delegating without it",
				"searched", r.FixesSearchPaths)
		}
	}
	report.FixesDir = fixesDir

	if opts.DryRun {
		return
	}

	report.Delegated = true
	report.DelegateErr = r.delegate(r.RuntimePatcher, report.SoldierRoot, fixesDir, r.logger)
}
