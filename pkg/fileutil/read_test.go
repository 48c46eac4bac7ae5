package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/protonpatch/protonpatch/internal/errors"
)

func TestReadFileWithLimit_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_settings.py")
	content := "user_settings = {\n    'PROTON_LOG': '1',\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFileWithLimit(path)
	if err != nil {
		t.Fatalf("ReadFileWithLimit() error = %v", err)
	}
	if string(got) != content {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestReadFileWithLimit_MissingFile(t *testing.T) {
	_, err := ReadFileWithLimit(filepath.Join(t.TempDir(), "absent.py"))
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestReadFileWithLimit_SizeBoundary(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"at limit", MaxFileSize, false},
		{"one over", MaxFileSize + 1, true},
		{"far over", MaxFileSize * 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings")
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			// Sparse file; only the reported size matters here.
			if err := f.Truncate(tt.size); err != nil {
				t.Fatal(err)
			}
			f.Close()

			data, err := ReadFileWithLimit(path)
			if tt.wantErr {
				if !errors.Is(err, ErrFileTooLarge) {
					t.Errorf("error = %v, want ErrFileTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFileWithLimit() error = %v", err)
			}
			if int64(len(data)) != tt.size {
				t.Errorf("read %d bytes, want %d", len(data), tt.size)
			}
		})
	}
}
