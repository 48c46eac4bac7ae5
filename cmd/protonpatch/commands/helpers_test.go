package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/protonpatch/protonpatch/internal/config"
	"github.com/protonpatch/protonpatch/internal/proton"
)

// realDir returns a symlink-resolved temp dir so fixture paths survive
// canonicalization unchanged.
func realDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	return dir
}

// writeFile writes content to path, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// sampleContent is the settings template used by test installations.
const sampleContent = "user_settings = {}\n"

// newProtonInstall writes the marker files of a valid, unpatched Proton
// installation into dir.
func newProtonInstall(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, proton.LauncherName), "#!/usr/bin/env python3\n")
	writeFile(t, filepath.Join(dir, proton.ToolManifestName), "\"manifest\"\n{\n}\n")
	writeFile(t, filepath.Join(dir, proton.SampleName), sampleContent)
}

// useConfig points the command layer at a config rooted in steamRoot and
// pretends to run unprivileged. The previous package state is restored
// when the test ends.
func useConfig(t *testing.T, steamRoot string) *config.Config {
	t.Helper()

	c := &config.Config{
		Version:              1,
		SteamRoots:           []string{steamRoot},
		CompatToolDirs:       []string{filepath.Join(steamRoot, "compatibilitytools.d")},
		SystemCompatToolDirs: []string{filepath.Join(steamRoot, "system-compat")},
		FixesSearchPaths:     []string{filepath.Join(steamRoot, "share")},
		RuntimePatcher:       "protonpatch-helper-that-does-not-exist",
	}

	origCfg, origLoadErr, origEuid := cfg, configLoadErr, geteuid
	cfg, configLoadErr = c, nil
	geteuid = func() int { return 1000 }
	t.Cleanup(func() {
		cfg, configLoadErr, geteuid = origCfg, origLoadErr, origEuid
	})

	return c
}
