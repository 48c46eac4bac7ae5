// Package patch applies the idempotent activation patch to an
// installation's user settings file.
//
// The patch appends a single line loading the fix-up package. A file
// already containing the line anywhere is left byte-for-byte untouched,
// so reapplying is always safe. When the settings file does not exist it
// is first created from the installation's sample template.
package patch

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/proton"
	"github.com/protonpatch/protonpatch/pkg/fileutil"
)

// Outcome reports what a patch did, or would do, to an installation.
type Outcome int

const (
	// Patched means the activation line was appended.
	Patched Outcome = iota
	// AlreadyPatched means the settings content already loads the fix-up
	// package, so nothing was appended.
	AlreadyPatched
)

// String returns the outcome's display name.
func (o Outcome) String() string {
	if o == AlreadyPatched {
		return "already patched"
	}
	return "patched"
}

// Result describes a planned or applied patch of one installation.
type Result struct {
	// SettingsPath is the user settings file inside the installation.
	SettingsPath string
	// Outcome reports whether the activation line was appended.
	Outcome Outcome
	// Created is true when the settings file did not exist and its
	// content starts from the sample template.
	Created bool
	// Before is the content the patch starts from: the current settings
	// file, or the sample template when Created.
	Before []byte
	// After is the content the settings file ends up with.
	After []byte

	perm os.FileMode
}

// Plan computes what patching dir would do, without writing anything.
func Plan(dir string) (*Result, error) {
	settings := filepath.Join(dir, proton.SettingsName)
	res := &Result{SettingsPath: settings}

	source := settings
	info, err := os.Stat(settings)
	switch {
	case err == nil:
		res.perm = info.Mode().Perm()
	case errors.Is(err, fs.ErrNotExist):
		res.Created = true
		source = filepath.Join(dir, proton.SampleName)
		sampleInfo, err := os.Stat(source)
		if err != nil {
			return nil, errors.Wrapf(err, "no settings or sample template in %s", dir)
		}
		res.perm = sampleInfo.Mode().Perm()
	default:
		return nil, errors.Wrapf(err, "inspecting %s", settings)
	}

	before, err := fileutil.ReadFileWithLimit(source)
	if err != nil {
		return nil, err
	}
	res.Before = before

	imported, err := proton.Imported(bytes.NewReader(before))
	if err != nil {
		return nil, err
	}
	if imported {
		res.Outcome = AlreadyPatched
		res.After = before
		return res, nil
	}

	res.Outcome = Patched
	res.After = append(bytes.Clone(before), "\n"+proton.ImportLine...)
	return res, nil
}

// Apply computes and writes the patch for dir. Applying twice leaves the
// settings file byte-identical to applying once.
func Apply(dir string) (*Result, error) {
	res, err := Plan(dir)
	if err != nil {
		return nil, err
	}
	if err := res.write(); err != nil {
		return nil, err
	}
	return res, nil
}

// write persists After whenever the run changes anything on disk. A newly
// created settings file is written even when the template already
// contains the activation line; the creation itself is the change.
func (r *Result) write() error {
	if r.Outcome == AlreadyPatched && !r.Created {
		return nil
	}
	if err := fileutil.AtomicWriteFile(r.SettingsPath, r.After, r.perm); err != nil {
		return errors.Wrapf(err, "writing %s", r.SettingsPath)
	}
	return nil
}
