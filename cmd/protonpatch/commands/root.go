// Package commands implements the CLI commands for protonpatch.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/protonpatch/protonpatch/internal/config"
	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/logging"
)

// Persistent flag values, bound in init.
var (
	configFile string
	verbosity  int
	quiet      bool
	logFormat  string
	logFile    string
)

// cfg is the configuration loaded during command initialization. It is
// never nil after initConfig runs; a failed load leaves the defaults.
var cfg *config.Config

// configLoadErr records whatever went wrong while loading the config
// file. Most commands gate on it through requireConfig; doctor reads
// it directly so a broken file becomes a check result instead of a
// startup failure.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ~/.config/protonpatch/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"more log detail (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"log errors only")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"console log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also append JSON logs to this file")

	// main prints errors with their suggestions attached; cobra's own
	// reporting would duplicate them.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
	if cfg == nil {
		cfg = config.Default()
	}
}

var rootCmd = &cobra.Command{
	Use:   "protonpatch",
	Short: "Patch Proton installations to load protonfixes",
	Long: `protonpatch discovers every Proton installation on this host and
patches each one's user_settings.py so the protonfixes fix-up package
is imported at launch.

Discovery covers the default Steam library, additional libraries from
libraryfolders.vdf, and the compatibilitytools.d directories for custom
builds. The patch is idempotent: installations that already import
protonfixes are left byte-for-byte untouched, so rerunning is always
safe. When the SteamLinuxRuntime soldier runtime is present its patch
step is delegated to an external helper.

Run as root, only the system-wide compatibility tool directories are
patched; user-level discovery and runtime delegation are skipped.`,
	Example: `  # Patch every discovered installation
  protonpatch install

  # Preview without writing
  protonpatch install --dry-run

  # Show what was found
  protonpatch list

  # Check the environment
  protonpatch doctor

  See Also: protonpatch install, protonpatch list, protonpatch doctor`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging builds the per-invocation logger and installs it as
// both the slog default and the command context logger.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	level := logLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if logging.Format(logFormat) == logging.FormatJSON {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		handler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "Check that the --log-file path is writable.")
		}
		// The file side is always JSON so it can be post-processed.
		fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
		handler = logging.NewMultiHandler(handler, fileHandler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// logLevel resolves the log level from the -v count. When no flag was
// given, PROTONPATCH_DEBUG=1 means debug and =2 means trace.
func logLevel() slog.Level {
	if quiet {
		return slog.LevelError
	}

	v := verbosity
	if v == 0 {
		switch os.Getenv("PROTONPATCH_DEBUG") {
		case "1", "true":
			v = 2
		case "2":
			v = 3
		}
	}
	return logging.LevelFromVerbosity(v)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
