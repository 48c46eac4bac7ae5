// Package config provides configuration management for protonpatch using Viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/fixes"
	"github.com/protonpatch/protonpatch/internal/paths"
	"github.com/protonpatch/protonpatch/internal/soldier"
	"github.com/protonpatch/protonpatch/internal/steam"
)

// AppName is the application name, used for the config directory and
// the environment variable prefix.
const AppName = "protonpatch"

// Config holds the tool's settings. Every list of paths falls back to
// the conventional Steam locations when left unset.
type Config struct {
	// Version is the config schema version. Must be >= 1.
	Version int `mapstructure:"version" yaml:"version"`

	// SteamRoots are candidate Steam installation roots, in precedence
	// order. The first existing root is the primary one.
	SteamRoots []string `mapstructure:"steam_roots" yaml:"steam_roots"`

	// CompatToolDirs are per-user compatibilitytools.d directories to
	// scan for custom Proton builds.
	CompatToolDirs []string `mapstructure:"compat_tool_dirs" yaml:"compat_tool_dirs"`

	// SystemCompatToolDirs are system-wide compatibilitytools.d
	// directories. These are the only locations scanned when running
	// as root.
	SystemCompatToolDirs []string `mapstructure:"system_compat_tool_dirs" yaml:"system_compat_tool_dirs"`

	// FixesSearchPaths are directories checked for an installed
	// protonfixes package, in precedence order.
	FixesSearchPaths []string `mapstructure:"fixes_search_paths" yaml:"fixes_search_paths"`

	// RuntimePatcher is the command invoked to patch the Steam Linux
	// Runtime, either a bare name resolved via PATH or an absolute path.
	RuntimePatcher string `mapstructure:"runtime_patcher" yaml:"runtime_patcher"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home := paths.Home()
	return &Config{
		Version:              1,
		SteamRoots:           steam.DefaultRoots(home),
		CompatToolDirs:       steam.DefaultUserCompatDirs(home),
		SystemCompatToolDirs: steam.DefaultSystemCompatDirs(),
		FixesSearchPaths:     fixes.DefaultSearchPaths(),
		RuntimePatcher:       soldier.DefaultCommand,
	}
}

// Dir returns the directory searched for the config file. The
// PROTONPATCH_CONFIG_DIR environment variable overrides the default
// XDG location.
func Dir() string {
	if dir := os.Getenv("PROTONPATCH_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(paths.ConfigHome(), AppName)
}

// File returns the path the config file is written to by default.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Init initializes Viper with the config location, environment binding
// and defaults. Call this once at application startup before Load.
func Init() {
	// No pinned type: viper picks config.yaml, config.toml or config.json,
	// whichever exists, and parses by extension.
	viper.SetConfigName("config")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix("PROTONPATCH")
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault("version", def.Version)
	viper.SetDefault("steam_roots", def.SteamRoots)
	viper.SetDefault("compat_tool_dirs", def.CompatToolDirs)
	viper.SetDefault("system_compat_tool_dirs", def.SystemCompatToolDirs)
	viper.SetDefault("fixes_search_paths", def.FixesSearchPaths)
	viper.SetDefault("runtime_patcher", def.RuntimePatcher)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default locations and a missing
// file falls back to defaults. Load does not validate, so callers that
// diagnose broken configs still get the parsed values.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// An explicitly requested file must exist.
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
		} else if errors.Is(err, os.ErrNotExist) && path != "" {
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}
