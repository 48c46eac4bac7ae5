package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/protonpatch/protonpatch/internal/config"
	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/logging"
	"github.com/protonpatch/protonpatch/internal/paths"
	"github.com/protonpatch/protonpatch/pkg/fileutil"
)

// configInitForce holds the value of the config init --force flag.
var configInitForce bool

// configKeys are the keys accepted by config set.
var configKeys = []string{
	"version",
	"steam_roots",
	"compat_tool_dirs",
	"system_compat_tool_dirs",
	"fixes_search_paths",
	"runtime_patcher",
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage protonpatch configuration",
	Long: `Manage protonpatch configuration stored in
~/.config/protonpatch/config.yaml.

Without a subcommand, lists the effective configuration.`,
	Example: `  # Write the default config file
  protonpatch config init

  # Show the effective configuration
  protonpatch config

  # Get a specific value
  protonpatch config get steam_roots

  # Set a value
  protonpatch config set runtime_patcher /usr/local/bin/my-helper

See Also: protonpatch doctor`,
	RunE: runConfigList,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the built-in default configuration to
~/.config/protonpatch/config.yaml, creating the directory if needed.

Fails if the file already exists unless --force is given.`,
	Example: `  # Create the config file
  protonpatch config init

  # Start over from the defaults
  protonpatch config init --force

See Also: protonpatch config list, protonpatch config edit`,
	RunE: runConfigInit,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Long: `Print a single configuration value by key. Path-list values print
one entry per line so shell loops can consume them.`,
	Example: `  # Get the helper command
  protonpatch config get runtime_patcher

  # Get the Steam roots
  protonpatch config get steam_roots

See Also: protonpatch config set, protonpatch config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Change a configuration value and write the config file.

Path-list keys (steam_roots, compat_tool_dirs, system_compat_tool_dirs,
fixes_search_paths) take comma-separated absolute paths. The new value
is validated before anything is written. The file is always written as
YAML to the config directory.`,
	Example: `  # Point at an unusual Steam root
  protonpatch config set steam_roots /opt/steam

  # Use a different runtime helper
  protonpatch config set runtime_patcher /usr/local/bin/my-helper

See Also: protonpatch config get, protonpatch config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration values in YAML format.`,
	Example: `  # Show the effective configuration
  protonpatch config list

See Also: protonpatch config get, protonpatch config set`,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the configuration file with the editor named by $EDITOR,
falling back to vi. Run 'protonpatch config init' first if the file
does not exist yet.`,
	Example: `  # Edit with your usual editor
  protonpatch config edit

  # One-off editor choice
  EDITOR=nano protonpatch config edit

See Also: protonpatch config init, protonpatch config list`,
	RunE: runConfigEdit,
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	return runConfigInitWithWriter(os.Stdout)
}

func runConfigInitWithWriter(w io.Writer) error {
	target := config.File()

	if _, err := os.Stat(target); err == nil && !configInitForce {
		return errors.NewUserError(
			errors.Newf("config file already exists at %s", target),
			"Use --force to overwrite it.")
	}

	if err := paths.EnsureDir(filepath.Dir(target), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(target, config.Default()); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	fmt.Fprintf(w, "Wrote %s\n", target)
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	return runConfigGetWithWriter(os.Stdout, args[0])
}

func runConfigGetWithWriter(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	return runConfigSetWithWriter(os.Stdout, args[0], args[1])
}

func runConfigSetWithWriter(w io.Writer, key, value string) error {
	if !slices.Contains(configKeys, key) {
		return errors.Newf("unknown config key %q (valid: %s)",
			key, strings.Join(configKeys, ", "))
	}

	switch key {
	case "version":
		v, err := strconv.Atoi(value)
		if err != nil {
			return errors.Newf("version must be an integer, got %q", value)
		}
		viper.Set(key, v)

	case "runtime_patcher":
		viper.Set(key, value)

	default:
		// Path-list keys take comma-separated values.
		pathList := parsePathList(value)
		if len(pathList) == 0 {
			return errors.New("no paths specified")
		}
		viper.Set(key, pathList)
	}

	// Reject values the tool could not load back.
	var updated config.Config
	if err := viper.Unmarshal(&updated); err != nil {
		return errors.Wrap(err, "unmarshaling config")
	}
	if errs := config.Validate(&updated); len(errs) > 0 {
		return errors.Wrapf(errors.Join(errs...), "invalid value for %s", key)
	}

	if err := writeConfig(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Set %s = %v\n", key, viper.Get(key))

	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	return runConfigListWithWriter(os.Stdout, logging.FromContext(cmd.Context()))
}

func runConfigListWithWriter(w io.Writer, log *slog.Logger) error {
	if configLoadErr != nil {
		log.Warn("config file failed to load; showing defaults", "error", configLoadErr)
	}

	data, err := yaml.Marshal(currentConfig())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(w, string(data))
	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	target := config.File()
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		return errors.Newf("config file not found at %s\nRun 'protonpatch config init' to create it", target)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	// The editor owns the terminal for the duration.
	editCmd := exec.Command(editor, target)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return errors.Wrap(err, "running editor")
	}
	return nil
}

// parsePathList splits comma-separated paths, dropping empty elements.
func parsePathList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// currentConfig snapshots the effective configuration from viper.
func currentConfig() map[string]any {
	return map[string]any{
		"version":                 viper.GetInt("version"),
		"steam_roots":             viper.GetStringSlice("steam_roots"),
		"compat_tool_dirs":        viper.GetStringSlice("compat_tool_dirs"),
		"system_compat_tool_dirs": viper.GetStringSlice("system_compat_tool_dirs"),
		"fixes_search_paths":      viper.GetStringSlice("fixes_search_paths"),
		"runtime_patcher":         viper.GetString("runtime_patcher"),
	}
}

// writeConfig persists the effective viper state to the config file.
func writeConfig() error {
	target := config.File()

	if err := paths.EnsureDir(filepath.Dir(target), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(target, currentConfig()); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
