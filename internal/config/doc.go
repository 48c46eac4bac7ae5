// Package config loads and validates protonpatch's own settings.
//
// Every field has a built-in default matching the conventional Steam
// filesystem layout, so the tool runs without any file present. When a
// file exists it is read from ~/.config/protonpatch (the directory can
// be moved with PROTONPATCH_CONFIG_DIR) and may be YAML, TOML, or JSON;
// YAML is what `protonpatch config init` writes:
//
//	version: 1
//	steam_roots:
//	  - /home/me/.steam/steam
//	compat_tool_dirs:
//	  - /home/me/.steam/root/compatibilitytools.d
//	runtime_patcher: protonpatch-soldier
//
// Single keys can be overridden through the environment, e.g.
// PROTONPATCH_RUNTIME_PATCHER.
//
// # Usage
//
// [Init] registers defaults and the search path with viper; call it
// once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//
// With an empty path Load searches the default locations and falls back
// to pure defaults when nothing is found; a non-empty path must name an
// existing file.
//
// Load deliberately skips validation so that diagnostics can inspect a
// broken configuration. Commands that act on the values call [Validate]
// first and treat a non-empty result as a user error.
package config
