package soldier

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/protonpatch/protonpatch/internal/logging"
)

// installHelper places a fake helper script named name on PATH that
// appends its arguments to argsFile, one invocation per line.
func installHelper(t *testing.T, name, argsFile string, exitCode int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script helper requires a POSIX shell")
	}

	bin := t.TempDir()
	script := "#!/bin/sh\necho \"$@\" >> " + argsFile + "\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestPatch_PassesBothArguments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	installHelper(t, "fake-soldier-helper", argsFile, 0)

	err := Patch("fake-soldier-helper", "/libs/steam", "/usr/share/protonfixes", logging.ForTest(t))
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("helper was not invoked: %v", err)
	}
	got := strings.TrimSpace(string(data))
	if got != "/libs/steam /usr/share/protonfixes" {
		t.Errorf("helper args = %q, want runtime root and fixes dir", got)
	}
}

func TestPatch_OmitsEmptyFixesDir(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	installHelper(t, "fake-soldier-helper", argsFile, 0)

	err := Patch("fake-soldier-helper", "/libs/steam", "", logging.ForTest(t))
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("helper was not invoked: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "/libs/steam" {
		t.Errorf("helper args = %q, want the runtime root only", got)
	}
}

func TestPatch_ReportsNonZeroExit(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	installHelper(t, "fake-soldier-helper", argsFile, 3)

	err := Patch("fake-soldier-helper", "/libs/steam", "", logging.ForTest(t))
	if err == nil {
		t.Fatal("expected an informational error for a non-zero exit")
	}
	// The helper still ran.
	if _, statErr := os.Stat(argsFile); statErr != nil {
		t.Errorf("helper was not invoked: %v", statErr)
	}
}

func TestPatch_MissingHelper(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := Patch("definitely-not-installed", "/libs/steam", "", logging.ForTest(t))
	if err == nil {
		t.Fatal("expected an informational error for a missing helper")
	}
}
