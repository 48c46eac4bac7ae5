package fileutil

import (
	"io"
	"os"

	"github.com/protonpatch/protonpatch/internal/errors"
)

// MaxFileSize bounds how much ReadFileWithLimit will load. Settings
// files run a few hundred bytes; anything near this limit is not one.
const MaxFileSize = 1 << 20

// ErrFileTooLarge reports a file above MaxFileSize.
var ErrFileTooLarge = errors.Newf("file larger than the %d byte read limit", MaxFileSize)

// ReadFileWithLimit reads path like os.ReadFile but refuses files
// larger than MaxFileSize, keeping a misconfigured path that points at
// some huge binary from exhausting memory.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	// Stat gives a cheap early reject. The bounded read below still
	// enforces the limit when the reported size is wrong.
	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
