package commands

import (
	"log/slog"

	"github.com/fatih/color"

	"github.com/protonpatch/protonpatch/internal/config"
	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/install"
	"github.com/protonpatch/protonpatch/internal/steam"
)

// Status glyphs for per-installation result lines. fatih/color disables
// itself on non-TTY output and under NO_COLOR.
var (
	glyphPatched   = color.New(color.FgGreen).Sprint("✓")
	glyphAlready   = color.New(color.FgCyan).Sprint("•")
	glyphUnpatched = color.New(color.FgYellow).Sprint("○")
	glyphSkipped   = color.New(color.FgRed).Sprint("✗")

	headerColor = color.New(color.FgCyan, color.Bold)
	dimColor    = color.New(color.Faint)
)

// requireConfig returns the loaded configuration after validating it.
// Commands that act on the filesystem call this; doctor deliberately does
// not, so it can still diagnose the config problems reported here.
func requireConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, errors.NewConfigError(configLoadErr)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, errors.NewConfigError(errors.Join(errs...))
	}
	return cfg, nil
}

// resolverFromConfig builds a Resolver over the configured locations.
func resolverFromConfig(c *config.Config, log *slog.Logger) *steam.Resolver {
	resolver := steam.NewResolver(log)
	resolver.Roots = c.SteamRoots
	resolver.UserCompatDirs = c.CompatToolDirs
	resolver.SystemCompatDirs = c.SystemCompatToolDirs
	return resolver
}

// runnerFromConfig builds the patch runner over the configured locations,
// helper command and fix-up search paths.
func runnerFromConfig(c *config.Config, log *slog.Logger) *install.Runner {
	runner := install.NewRunner(resolverFromConfig(c, log), log)
	runner.RuntimePatcher = c.RuntimePatcher
	runner.FixesSearchPaths = c.FixesSearchPaths
	return runner
}
