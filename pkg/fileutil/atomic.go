// Package fileutil holds the filesystem helpers shared by the patcher
// and the config commands: crash-safe writes and size-bounded reads.
package fileutil

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/protonpatch/protonpatch/internal/errors"
)

// AtomicWriteFile replaces path with data in a single rename, so a
// reader never sees a half-written file and a crash mid-write leaves
// the previous contents untouched. Proton reads user_settings.py at
// game launch; a truncated one there breaks every game under that
// build.
//
// The temp file lives next to path because rename is only atomic
// within one filesystem. perm is applied before the swap. The parent
// directory must already exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".protonpatch-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "swapping %s into place", path)
	}
	committed = true

	return nil
}

// AtomicWriteYAML marshals v and writes it to path via AtomicWriteFile
// with 0o644 permissions, ending in a newline.
func AtomicWriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, 0o644)
}
