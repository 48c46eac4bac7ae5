package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/protonpatch/protonpatch/internal/config"
	"github.com/protonpatch/protonpatch/internal/doctor"
	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/logging"
	"github.com/protonpatch/protonpatch/internal/paths"
)

var (
	doctorJSON      bool
	doctorQuiet     bool
	doctorVerbose   bool
	doctorFix       bool
	doctorAnonymize bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"print the report as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"no output, only the exit code")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"include passing checks in the output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"apply automatic fixes where possible")
	doctorCmd.Flags().BoolVar(&doctorAnonymize, "anonymize", false,
		"replace the home directory with ~ in output")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose Steam and Proton environment issues",
	Long: `Run diagnostic checks on the Steam installation, the Proton
discovery paths, the fix-up package and the protonpatch configuration.

Doctor runs even when the configuration is broken, so it can point at
the problem that stops the other commands.

By default only errors and warnings print; --verbose adds the passing
checks, --quiet drops all output in favor of the exit code, and --json
emits the full report for tooling. The three are mutually exclusive.

Use --fix to create missing compatibility-tool directories, and
--anonymize to strip the home directory from output before sharing it.

The exit code is 0 when everything passed, 1 with warnings present,
and 2 with errors present.`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags rejects combinations of the output-mode flags.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	set := 0
	for _, on := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if on {
			set++
		}
	}
	if set > 1 {
		return errors.New("flags --json, --quiet, and --verbose are mutually exclusive")
	}
	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	return runDoctorWithWriter(os.Stdout, logging.FromContext(cmd.Context()))
}

// runDoctorWithWriter allows injecting a writer and logger for testing.
func runDoctorWithWriter(w io.Writer, log *slog.Logger) error {
	if doctorQuiet {
		// Quiet means exit code only, including the per-check debug trail.
		log = logging.NewDiscard()
	}

	checks := buildChecks(log)

	runner := doctor.NewRunner(log)
	for _, c := range checks {
		runner.AddCheck(c)
	}

	report := runner.Run()

	if doctorFix {
		if applyFixes(w, checks) > 0 {
			// Re-run so the report reflects the repaired state.
			report = runner.Run()
		}
	}

	if doctorAnonymize {
		doctor.AnonymizeReport(report, paths.Home())
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	// Exit code carries the outcome; the report itself is the message.
	if report.HasErrors() {
		return errors.NewExitError(nil, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

// buildChecks assembles the diagnostic suite over the loaded config.
// Config problems become check results here, never load failures.
func buildChecks(log *slog.Logger) []doctor.Check {
	resolver := resolverFromConfig(cfg, log)

	return []doctor.Check{
		doctor.NewPrivilegeCheck(),
		doctor.NewConfigSyntaxCheck(config.Dir()),
		doctor.NewConfigValuesCheck(cfg, configLoadErr),
		doctor.NewSteamRootCheck(resolver),
		doctor.NewLibraryManifestCheck(resolver),
		doctor.NewCompatDirsCheck(resolver),
		doctor.NewProtonInstallsCheck(runnerFromConfig(cfg, log), geteuid() == 0),
		doctor.NewFixesPackageCheck(cfg.FixesSearchPaths),
		doctor.NewRuntimePatcherCheck(cfg.RuntimePatcher),
	}
}

// applyFixes runs every fixable check's remediation and reports each
// attempt. Returns the number of successful fixes.
func applyFixes(w io.Writer, checks []doctor.Check) int {
	applied := 0
	for _, c := range checks {
		fixer, ok := c.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		for _, res := range fixer.Fix() {
			if !res.Fixed {
				fmt.Fprintf(w, "%s fix failed: %s: %v\n", glyphSkipped, res.Path, res.Err)
				continue
			}
			fmt.Fprintf(w, "%s fixed: %s (%s)\n", glyphPatched, res.Action, res.Path)
			applied++
		}
	}
	return applied
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	return outputDoctorText(w, report)
}

func outputDoctorJSON(w io.Writer, report *doctor.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report) error {
	// Errors and warnings always print; --verbose adds the rest.
	printed := false
	for _, result := range report.Results {
		actionable := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !actionable && !doctorVerbose {
			continue
		}

		printed = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", severityGlyph(result.Status), result.Category, result.Name, result.Message)
		if actionable && result.FixHint != "" {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if printed || doctorVerbose {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func severityGlyph(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return glyphPatched
	case doctor.SeverityInfo:
		return color.New(color.FgBlue).Sprint("ℹ")
	case doctor.SeverityWarning:
		return color.New(color.FgYellow).Sprint("⚠")
	case doctor.SeverityError:
		return glyphSkipped
	default:
		return "?"
	}
}
