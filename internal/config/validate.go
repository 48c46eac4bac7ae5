package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// What Validate can object to.
var (
	// ErrVersionTooLow flags a schema version below the first release.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidPath flags a malformed entry in a path list.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNoRuntimePatcher flags an empty runtime_patcher command.
	ErrNoRuntimePatcher = errors.New("runtime_patcher must not be empty")
)

// Validate collects every problem in cfg rather than stopping at the
// first, so doctor can report them all in one run. A nil return means
// the config is usable.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("nil config")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if strings.TrimSpace(cfg.RuntimePatcher) == "" {
		errs = append(errs, ErrNoRuntimePatcher)
	}

	// Every configured path list must hold well-formed absolute paths.
	for _, group := range []struct {
		field string
		paths []string
	}{
		{"steam_roots", cfg.SteamRoots},
		{"compat_tool_dirs", cfg.CompatToolDirs},
		{"system_compat_tool_dirs", cfg.SystemCompatToolDirs},
		{"fixes_search_paths", cfg.FixesSearchPaths},
	} {
		for _, path := range group.paths {
			if err := validatePath(path); err != nil {
				errs = append(errs, &PathError{
					Field: group.field,
					Path:  path,
					Err:   err,
				})
			}
		}
	}

	return errs
}

// validatePath accepts any syntactically sound absolute path. Existence
// is discovery's concern, not validation's.
func validatePath(path string) error {
	switch {
	case path == "":
		return ErrInvalidPath
	case strings.ContainsRune(path, '\x00'):
		// Null bytes are never valid in paths.
		return ErrInvalidPath
	case !filepath.IsAbs(path):
		// Relative entries would silently depend on the working directory.
		return ErrInvalidPath
	}
	return nil
}

// PathError ties a bad path back to the config field it came from.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
