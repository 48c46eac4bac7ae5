// Package vdf extracts values from Valve Data Format files using narrow
// line-based patterns.
//
// This is deliberately not a VDF parser. The two fields this tool reads
// (library folder paths and compatibility-tool install paths) each appear
// on their own line without ambiguity in practice, so a line scan with a
// single named capture group is sufficient. Malformed and unrelated lines
// are skipped silently, never erroring.
package vdf

import (
	"bufio"
	"io"
	"os"
	"regexp"

	"github.com/cockroachdb/errors"
)

var (
	// LibraryFolder matches numbered library entries in libraryfolders.vdf,
	// e.g. `"1" "/mnt/games/SteamLibrary"`.
	LibraryFolder = regexp.MustCompile(`^\s*"\d+"\s*"(?P<path>[\w/]+)"`)

	// InstallPath matches install_path entries in compatibility-tool
	// manifests, e.g. `"install_path" "/opt/tools/GE-Proton9-5"`.
	InstallPath = regexp.MustCompile(`^\s*"install_path"\s*"(?P<path>[\w/]+)"`)
)

// Scan reads r line by line and returns the value of pattern's named
// capture group for every matching line, in input order. Lines that do
// not match produce nothing.
func Scan(r io.Reader, pattern *regexp.Regexp) ([]string, error) {
	group := namedGroup(pattern)
	if group < 0 {
		return nil, errors.Newf("pattern %q has no named capture group", pattern)
	}

	var values []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := pattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		values = append(values, m[group])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning lines")
	}

	return values, nil
}

// ScanFile opens path and scans it with pattern. Open failures propagate
// to the caller, which decides whether a missing file matters; Steam's
// library and tool manifests are optional, so callers usually treat
// absence as "no entries".
func ScanFile(path string, pattern *regexp.Regexp) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	return Scan(f, pattern)
}

// namedGroup returns the submatch index of the pattern's first named
// capture group, or -1 if the pattern has none.
func namedGroup(pattern *regexp.Regexp) int {
	for i, name := range pattern.SubexpNames() {
		if i > 0 && name != "" {
			return i
		}
	}
	return -1
}
