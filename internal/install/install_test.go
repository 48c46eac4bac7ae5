package install

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/logging"
	"github.com/protonpatch/protonpatch/internal/patch"
	"github.com/protonpatch/protonpatch/internal/proton"
	"github.com/protonpatch/protonpatch/internal/steam"
)

const (
	samplePy     = "#rename this file to user_settings.py to enable it\nuser_settings = {}\n"
	toolManifest = "\"manifest\"\n{\n\t\"version\"\t\"2\"\n}\n"
)

// realDir returns a symlink-resolved temp dir so fixture paths survive
// canonicalization unchanged.
func realDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func writeMarkers(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, proton.LauncherName), []byte("#!/usr/bin/env python3\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, proton.SampleName), []byte(samplePy), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, proton.ToolManifestName), []byte(toolManifest), 0o644))
}

// addProton creates a valid installation under the library's default
// install location.
func addProton(t *testing.T, library, name string) string {
	t.Helper()
	dir := filepath.Join(library, "steamapps", "common", name)
	writeMarkers(t, dir)
	return dir
}

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, proton.SettingsName), []byte(content), 0o644))
}

func readSettings(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, proton.SettingsName))
	require.NoError(t, err)
	return string(data)
}

func newTestResolver(t *testing.T, roots ...string) *steam.Resolver {
	t.Helper()
	r := steam.NewResolver(logging.ForTest(t))
	r.Roots = roots
	r.UserCompatDirs = nil
	r.SystemCompatDirs = nil
	return r
}

func newTestRunner(t *testing.T, resolver *steam.Resolver) *Runner {
	t.Helper()
	return NewRunner(resolver, logging.ForTest(t))
}

func TestRun_PatchesAndReportsAlreadyPatched(t *testing.T) {
	steamRoot := realDir(t)
	fresh := addProton(t, steamRoot, "Proton 9.0")
	already := addProton(t, steamRoot, "Proton 8.0")
	writeSettings(t, already, "import protonfixes\n")

	r := newTestRunner(t, newTestResolver(t, steamRoot))
	report, err := r.Run(Options{})
	require.NoError(t, err)

	require.Equal(t, 1, report.Patched)
	require.Equal(t, 1, report.Already)
	require.Equal(t, 0, report.Failed)
	require.Len(t, report.Installations, 2)

	// Canonical order is lexicographic: Proton 8.0 before Proton 9.0.
	require.Equal(t, already, report.Installations[0].Path)
	require.Equal(t, fresh, report.Installations[1].Path)

	require.Equal(t, samplePy+"\n"+proton.ImportLine, readSettings(t, fresh))
	require.Equal(t, "import protonfixes\n", readSettings(t, already), "already patched file must stay byte-identical")
}

func TestRun_SteamMissing(t *testing.T) {
	r := newTestRunner(t, newTestResolver(t, filepath.Join(t.TempDir(), "absent")))

	report, err := r.Run(Options{})
	require.Nil(t, report)
	require.True(t, errors.Is(err, errors.ErrSteamNotFound), "got %v", err)
}

func TestRun_LibraryManifestExpandsDiscovery(t *testing.T) {
	steamRoot := realDir(t)
	library := realDir(t)
	pattern := regexp.MustCompile(`^[\w/]+$`)
	if !pattern.MatchString(library) {
		t.Skipf("temp dir %q contains characters the manifest grammar does not cover", library)
	}

	addProton(t, steamRoot, "Proton 9.0")
	extra := addProton(t, library, "Proton Experimental")

	manifest := filepath.Join(steamRoot, steam.LibraryManifest)
	require.NoError(t, os.MkdirAll(filepath.Dir(manifest), 0o755))
	require.NoError(t, os.WriteFile(manifest, []byte("\"0\"\t\""+library+"\"\n"), 0o644))

	r := newTestRunner(t, newTestResolver(t, steamRoot))
	report, err := r.Run(Options{})
	require.NoError(t, err)

	require.Equal(t, 2, report.Patched)
	require.Equal(t, samplePy+"\n"+proton.ImportLine, readSettings(t, extra))
}

func TestRun_CompatCandidatesValidatedGlobNot(t *testing.T) {
	steamRoot := realDir(t)
	compat := realDir(t)

	// Glob-discovered dir missing its tool manifest: bypasses validation
	// and is still patched.
	bare := filepath.Join(steamRoot, "steamapps", "common", "Proton 5.0")
	require.NoError(t, os.MkdirAll(bare, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bare, proton.LauncherName), []byte(""), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bare, proton.SampleName), []byte(samplePy), 0o644))

	// Compat-tool candidate with the same defect: filtered out.
	broken := filepath.Join(compat, "BrokenTool")
	require.NoError(t, os.MkdirAll(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, proton.LauncherName), []byte(""), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, proton.SampleName), []byte(samplePy), 0o644))

	good := filepath.Join(compat, "GoodTool")
	writeMarkers(t, good)

	resolver := newTestResolver(t, steamRoot)
	resolver.UserCompatDirs = []string{compat}

	r := newTestRunner(t, resolver)
	report, err := r.Run(Options{})
	require.NoError(t, err)

	var paths []string
	for _, item := range report.Installations {
		paths = append(paths, item.Path)
	}
	require.ElementsMatch(t, []string{bare, good}, paths)

	_, statErr := os.Stat(filepath.Join(broken, proton.SettingsName))
	require.True(t, os.IsNotExist(statErr), "rejected candidate must not be touched")
}

func TestRun_PerItemFailureIsolation(t *testing.T) {
	steamRoot := realDir(t)

	// Sorts first and fails: the settings path is a directory.
	bad := addProton(t, steamRoot, "Proton 1.0")
	require.NoError(t, os.Mkdir(filepath.Join(bad, proton.SettingsName), 0o755))

	good := addProton(t, steamRoot, "Proton 2.0")

	r := newTestRunner(t, newTestResolver(t, steamRoot))
	report, err := r.Run(Options{})
	require.NoError(t, err, "per-item failures must not abort the run")

	require.Equal(t, 1, report.Failed)
	require.Equal(t, 1, report.Patched)
	require.Error(t, report.Installations[0].Err)
	require.Equal(t, samplePy+"\n"+proton.ImportLine, readSettings(t, good))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	steamRoot := realDir(t)
	fresh := addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))

	delegated := false
	r := newTestRunner(t, newTestResolver(t, steamRoot))
	r.delegate = func(_, _, _ string, _ *slog.Logger) error {
		delegated = true
		return nil
	}

	report, err := r.Run(Options{DryRun: true})
	require.NoError(t, err)

	require.Equal(t, 1, report.Patched)
	require.Equal(t, patch.Patched, report.Installations[0].Result.Outcome)
	_, statErr := os.Stat(filepath.Join(fresh, proton.SettingsName))
	require.True(t, os.IsNotExist(statErr), "dry run must not create the settings file")

	require.False(t, delegated, "dry run must not invoke the helper")
	require.False(t, report.Delegated)
	require.Equal(t, steamRoot, report.SoldierRoot, "dry run still reports what would be delegated")
}

func TestRun_DelegatesCompanionRuntime(t *testing.T) {
	steamRoot := realDir(t)
	addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))

	dataDir := realDir(t)
	fixesDir := filepath.Join(dataDir, "protonfixes")
	require.NoError(t, os.MkdirAll(fixesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fixesDir, "__init__.py"), []byte(""), 0o644))

	var gotName, gotRoot, gotFixes string
	r := newTestRunner(t, newTestResolver(t, steamRoot))
	r.RuntimePatcher = "helper-under-test"
	r.FixesSearchPaths = []string{dataDir}
	r.delegate = func(name, runtimeRoot, fixesDir string, _ *slog.Logger) error {
		gotName, gotRoot, gotFixes = name, runtimeRoot, fixesDir
		return nil
	}

	report, err := r.Run(Options{})
	require.NoError(t, err)

	require.True(t, report.Delegated)
	require.NoError(t, report.DelegateErr)
	require.Equal(t, "helper-under-test", gotName)
	require.Equal(t, steamRoot, gotRoot, "the helper receives the library root, not the runtime subdir")
	require.Equal(t, fixesDir, gotFixes)
	require.Equal(t, fixesDir, report.FixesDir)
}

func TestRun_DelegateFailureIsNotFatal(t *testing.T) {
	steamRoot := realDir(t)
	addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))

	r := newTestRunner(t, newTestResolver(t, steamRoot))
	r.delegate = func(_, _, _ string, _ *slog.Logger) error {
		return errors.New("helper exploded")
	}

	report, err := r.Run(Options{})
	require.NoError(t, err, "delegate failure must not fail the run")
	require.True(t, report.Delegated)
	require.Error(t, report.DelegateErr)
	require.Equal(t, 1, report.Patched)
}

func TestRun_MissingFixesStillDelegates(t *testing.T) {
	steamRoot := realDir(t)
	addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))

	var gotFixes string
	called := false
	r := newTestRunner(t, newTestResolver(t, steamRoot))
	r.FixesSearchPaths = []string{t.TempDir()}
	r.delegate = func(_, _, fixesDir string, _ *slog.Logger) error {
		called = true
		gotFixes = fixesDir
		return nil
	}

	report, err := r.Run(Options{})
	require.NoError(t, err)
	require.True(t, called, "delegation happens even without a fix-up package")
	require.Empty(t, gotFixes)
	require.Empty(t, report.FixesDir)
}

func TestRun_FixesDirOverride(t *testing.T) {
	steamRoot := realDir(t)
	addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))

	var gotFixes string
	r := newTestRunner(t, newTestResolver(t, steamRoot))
	r.FixesSearchPaths = []string{t.TempDir()}
	r.delegate = func(_, _, fixesDir string, _ *slog.Logger) error {
		gotFixes = fixesDir
		return nil
	}

	_, err := r.Run(Options{FixesDir: "/custom/protonfixes"})
	require.NoError(t, err)
	require.Equal(t, "/custom/protonfixes", gotFixes)
}

func TestRun_SkipRuntime(t *testing.T) {
	steamRoot := realDir(t)
	addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))

	called := false
	r := newTestRunner(t, newTestResolver(t, steamRoot))
	r.delegate = func(_, _, _ string, _ *slog.Logger) error {
		called = true
		return nil
	}

	report, err := r.Run(Options{SkipRuntime: true})
	require.NoError(t, err)
	require.False(t, called)
	require.False(t, report.Delegated)
}

func TestRun_PrivilegedScansOnlySystemDirs(t *testing.T) {
	// A fully populated user layout that a privileged run must ignore.
	steamRoot := realDir(t)
	userProton := addProton(t, steamRoot, "Proton 9.0")
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, steam.SoldierSubdir), 0o755))
	userCompat := realDir(t)
	userTool := filepath.Join(userCompat, "UserTool")
	writeMarkers(t, userTool)

	systemCompat := realDir(t)
	systemTool := filepath.Join(systemCompat, "SysTool")
	writeMarkers(t, systemTool)

	resolver := newTestResolver(t, steamRoot)
	resolver.UserCompatDirs = []string{userCompat}
	resolver.SystemCompatDirs = []string{systemCompat}

	called := false
	r := newTestRunner(t, resolver)
	r.delegate = func(_, _, _ string, _ *slog.Logger) error {
		called = true
		return nil
	}

	report, err := r.Run(Options{Privileged: true})
	require.NoError(t, err)

	require.Len(t, report.Installations, 1)
	require.Equal(t, systemTool, report.Installations[0].Path)

	for _, dir := range []string{userProton, userTool} {
		_, statErr := os.Stat(filepath.Join(dir, proton.SettingsName))
		require.True(t, os.IsNotExist(statErr), "privileged run must not touch %s", dir)
	}
	require.Empty(t, report.SoldierRoot)
	require.False(t, called, "privileged runs never delegate")
}

func TestRun_PrivilegedDoesNotNeedSteam(t *testing.T) {
	systemCompat := realDir(t)
	tool := filepath.Join(systemCompat, "SysTool")
	writeMarkers(t, tool)

	resolver := newTestResolver(t, filepath.Join(t.TempDir(), "absent"))
	resolver.SystemCompatDirs = []string{systemCompat}

	r := newTestRunner(t, resolver)
	report, err := r.Run(Options{Privileged: true})
	require.NoError(t, err, "privileged discovery must not require a user Steam root")
	require.Equal(t, 1, report.Patched)
}

func TestRun_DeduplicatesAcrossSources(t *testing.T) {
	steamRoot := realDir(t)
	target := addProton(t, steamRoot, "Proton 9.0")

	compat := realDir(t)
	link := filepath.Join(compat, "Proton9Link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	resolver := newTestResolver(t, steamRoot)
	resolver.UserCompatDirs = []string{compat}

	r := newTestRunner(t, resolver)
	report, err := r.Run(Options{})
	require.NoError(t, err)

	require.Len(t, report.Installations, 1, "the symlinked compat entry is the same installation")
	require.Equal(t, target, report.Installations[0].Path)
}

func TestRun_SelectHook(t *testing.T) {
	steamRoot := realDir(t)
	first := addProton(t, steamRoot, "Proton 8.0")
	second := addProton(t, steamRoot, "Proton 9.0")

	r := newTestRunner(t, newTestResolver(t, steamRoot))
	report, err := r.Run(Options{
		Select: func(installs []string) ([]string, error) {
			require.Equal(t, []string{first, second}, installs)
			return installs[:1], nil
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Installations, 1)
	require.Equal(t, first, report.Installations[0].Path)

	_, statErr := os.Stat(filepath.Join(second, proton.SettingsName))
	require.True(t, os.IsNotExist(statErr), "deselected installation must stay untouched")
}

func TestRun_SelectError(t *testing.T) {
	steamRoot := realDir(t)
	addProton(t, steamRoot, "Proton 9.0")

	r := newTestRunner(t, newTestResolver(t, steamRoot))
	_, err := r.Run(Options{
		Select: func([]string) ([]string, error) {
			return nil, errors.New("selection aborted")
		},
	})
	require.Error(t, err)
}

func TestCandidates_SkipsValidation(t *testing.T) {
	steamRoot := realDir(t)
	protonDir := addProton(t, steamRoot, "Proton 9.0")

	compat := realDir(t)
	broken := filepath.Join(compat, "BrokenTool")
	require.NoError(t, os.MkdirAll(broken, 0o755))

	resolver := newTestResolver(t, steamRoot)
	resolver.UserCompatDirs = []string{compat}

	r := newTestRunner(t, resolver)
	got, err := r.Candidates(false)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{protonDir, broken}, got)
}

func TestCandidates_Privileged(t *testing.T) {
	systemCompat := realDir(t)
	tool := filepath.Join(systemCompat, "SysTool")
	require.NoError(t, os.MkdirAll(tool, 0o755))

	resolver := newTestResolver(t, filepath.Join(t.TempDir(), "absent"))
	resolver.SystemCompatDirs = []string{systemCompat}

	r := newTestRunner(t, resolver)
	got, err := r.Candidates(true)
	require.NoError(t, err)
	require.Equal(t, []string{tool}, got)
}
