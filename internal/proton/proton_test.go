package proton

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newInstall creates a fake installation directory containing the given
// entries. Entries ending in "/" are created as subdirectories.
func newInstall(t *testing.T, entries ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, entry := range entries {
		if sub, ok := strings.CutSuffix(entry, "/"); ok {
			if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, entry), []byte("# placeholder\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestIsValidInstallation(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    bool
	}{
		{
			name:    "all markers present",
			entries: []string{"proton", "user_settings.sample.py", "toolmanifest.vdf"},
			want:    true,
		},
		{
			name:    "live settings file satisfies the settings marker",
			entries: []string{"proton", "user_settings.py", "toolmanifest.vdf"},
			want:    true,
		},
		{
			name:    "missing launcher",
			entries: []string{"user_settings.sample.py", "toolmanifest.vdf"},
			want:    false,
		},
		{
			name:    "missing both settings files",
			entries: []string{"proton", "toolmanifest.vdf"},
			want:    false,
		},
		{
			name:    "missing tool manifest",
			entries: []string{"proton", "user_settings.sample.py"},
			want:    false,
		},
		{
			name:    "bundled protonfixes directory excludes the build",
			entries: []string{"proton", "user_settings.sample.py", "toolmanifest.vdf", "protonfixes/"},
			want:    false,
		},
		{
			name:    "bundled protonfixes file excludes the build",
			entries: []string{"proton", "user_settings.sample.py", "toolmanifest.vdf", "protonfixes"},
			want:    false,
		},
		{
			name:    "launcher must be a regular file",
			entries: []string{"proton/", "user_settings.sample.py", "toolmanifest.vdf"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newInstall(t, tt.entries...)
			if got := IsValidInstallation(dir); got != tt.want {
				t.Errorf("IsValidInstallation(%v) = %v, want %v", tt.entries, got, tt.want)
			}
		})
	}
}

func TestIsValidInstallation_NotADirectory(t *testing.T) {
	if IsValidInstallation(filepath.Join(t.TempDir(), "absent")) {
		t.Error("nonexistent path should be invalid")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if IsValidInstallation(file) {
		t.Error("a regular file should be invalid")
	}
}

func TestImported(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"exact line", "import protonfixes\n", true},
		{"line with trailing comment", "import protonfixes # enabled\n", true},
		{"after other lines", "#custom settings\nuser_settings = {}\nimport protonfixes\n", true},
		{"indented does not count", "    import protonfixes\n", false},
		{"mentioned in a comment does not count", "# import protonfixes\n", false},
		{"absent", "user_settings = {}\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Imported(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Imported failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Imported(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestHasBundledFixes(t *testing.T) {
	if HasBundledFixes(newInstall(t, "proton")) {
		t.Error("no protonfixes entry, want false")
	}
	if !HasBundledFixes(newInstall(t, "protonfixes/")) {
		t.Error("protonfixes directory, want true")
	}
	if !HasBundledFixes(newInstall(t, "protonfixes")) {
		t.Error("protonfixes file, want true")
	}
}
