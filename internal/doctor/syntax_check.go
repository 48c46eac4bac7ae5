package doctor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/protonpatch/protonpatch/internal/config"
)

// configFileNames are the config files the loader recognizes, in the
// precedence order the loader applies when several exist.
var configFileNames = []string{
	"config.json",
	"config.toml",
	"config.yaml",
	"config.yml",
}

// ConfigSyntaxCheck parses each config file in the directory without
// loading it, so a broken file is reported with position info instead
// of a bare unmarshal error.
type ConfigSyntaxCheck struct {
	dir string
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// NewConfigSyntaxCheck creates a syntax check over the given config
// directory.
func NewConfigSyntaxCheck(dir string) *ConfigSyntaxCheck {
	return &ConfigSyntaxCheck{dir: dir}
}

func (c *ConfigSyntaxCheck) Name() string     { return "config-syntax" }
func (c *ConfigSyntaxCheck) Category() string { return "config" }

// fileSyntax is the per-file outcome recorded in the check details.
type fileSyntax struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Run parses every recognized config file present in the directory.
func (c *ConfigSyntaxCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  make(map[string]any),
	}

	var files []fileSyntax
	broken := 0
	for _, name := range configFileNames {
		path := filepath.Join(c.dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fs := checkSyntax(path)
		if fs.Status == "error" {
			broken++
		}
		files = append(files, fs)
	}

	result.Details["files"] = files
	result.Details["checked"] = len(files)

	switch {
	case broken > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d config file(s) have syntax errors", broken)
		result.FixHint = "review the error details and fix the syntax in each file"
	case len(files) > 1:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d config files present; only %s is loaded",
			len(files), files[0].Path)
		result.FixHint = "remove the shadowed config files"
	case len(files) == 1:
		result.Message = fmt.Sprintf("%s is valid", files[0].Path)
	default:
		result.Status = SeverityInfo
		result.Message = "no config file; built-in defaults apply"
	}

	return result
}

// syntaxProbes maps config file extensions to parsers. Each probe
// returns "" on clean input, otherwise a message carrying position
// info when the parser provides one.
var syntaxProbes = map[string]func([]byte) string{
	".json": probeJSON,
	".toml": probeTOML,
	".yaml": probeYAML,
	".yml":  probeYAML,
}

// checkSyntax parses one config file and records how it went.
func checkSyntax(path string) fileSyntax {
	fs := fileSyntax{Path: path, Status: "pass"}

	data, err := os.ReadFile(path)
	if err != nil {
		fs.Status = "error"
		fs.Message = fmt.Sprintf("read error: %v", err)
		return fs
	}
	if len(data) == 0 {
		// The loader treats an empty file as all-defaults.
		fs.Message = "empty file"
		return fs
	}

	probe, ok := syntaxProbes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		probe = probeYAML
	}
	if msg := probe(data); msg != "" {
		fs.Status = "error"
		fs.Message = msg
	}
	return fs
}

func probeJSON(data []byte) string {
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		return ""
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := lineColAt(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := lineColAt(data, int(typeErr.Offset))
		return fmt.Sprintf("JSON type error at line %d, column %d: %s", line, col, typeErr)
	}
	return fmt.Sprintf("JSON error: %v", err)
}

func probeTOML(data []byte) string {
	var v any
	err := toml.Unmarshal(data, &v)
	if err == nil {
		return ""
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr)
	}
	return fmt.Sprintf("TOML error: %v", err)
}

func probeYAML(data []byte) string {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		// The yaml parser already embeds line numbers.
		return fmt.Sprintf("YAML syntax error: %v", err)
	}
	return ""
}

// lineColAt converts a byte offset into 1-indexed line and column.
func lineColAt(data []byte, offset int) (line, col int) {
	offset = min(max(offset, 0), len(data))
	head := data[:offset]

	line = bytes.Count(head, []byte{'\n'}) + 1
	col = offset - (bytes.LastIndexByte(head, '\n') + 1) + 1
	return line, col
}

// ConfigValuesCheck validates the loaded configuration values.
type ConfigValuesCheck struct {
	cfg     *config.Config
	loadErr error
}

var _ Check = (*ConfigValuesCheck)(nil)

// NewConfigValuesCheck creates a check over an already loaded config.
// loadErr carries the load failure, if any, so the check can report it.
func NewConfigValuesCheck(cfg *config.Config, loadErr error) *ConfigValuesCheck {
	return &ConfigValuesCheck{cfg: cfg, loadErr: loadErr}
}

func (c *ConfigValuesCheck) Name() string     { return "config-values" }
func (c *ConfigValuesCheck) Category() string { return "config" }

// Run reports the load error if there was one, otherwise everything
// Validate objects to.
func (c *ConfigValuesCheck) Run() *CheckResult {
	if c.loadErr != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  "config failed to load: " + c.loadErr.Error(),
			FixHint:  "fix the reported problem or remove the config file to use defaults",
		}
	}

	if errs := config.Validate(c.cfg); len(errs) > 0 {
		problems := make([]string, 0, len(errs))
		for _, err := range errs {
			problems = append(problems, err.Error())
		}
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("%d invalid config value(s)", len(errs)),
			Details:  map[string]any{"problems": problems},
			FixHint:  "correct the listed values in the config file",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message: fmt.Sprintf("config valid: %d steam root(s), %d tool dir(s), runtime patcher %q",
			len(c.cfg.SteamRoots),
			len(c.cfg.CompatToolDirs)+len(c.cfg.SystemCompatToolDirs),
			c.cfg.RuntimePatcher),
	}
}
