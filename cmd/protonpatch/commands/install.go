package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/install"
	"github.com/protonpatch/protonpatch/internal/logging"
	"github.com/protonpatch/protonpatch/internal/patch"
	"github.com/protonpatch/protonpatch/internal/proton"
)

var (
	installDryRun      bool
	installDiff        bool
	installInteractive bool
	installSkipRuntime bool
	installFixesDir    string
)

// geteuid is a seam for privilege tests.
var geteuid = os.Geteuid

func init() {
	installCmd.Flags().BoolVarP(&installDryRun, "dry-run", "n", false,
		"report what would change without writing anything")
	installCmd.Flags().BoolVar(&installDiff, "diff", false,
		"show a unified diff of each settings change")
	installCmd.Flags().BoolVarP(&installInteractive, "interactive", "i", false,
		"pick the installations to patch with a fuzzy finder")
	installCmd.Flags().BoolVar(&installSkipRuntime, "skip-runtime", false,
		"do not delegate the SteamLinuxRuntime patch step")
	installCmd.Flags().StringVar(&installFixesDir, "fixes-dir", "",
		"protonfixes directory handed to the runtime helper (default: autodetected)")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Patch discovered Proton installations",
	Long: `Discover every Proton installation and patch each one's
user_settings.py to import protonfixes at launch.

Discovery walks the Steam roots, the library folders declared in
libraryfolders.vdf, and the compatibilitytools.d directories. Builds
that already import protonfixes, or that bundle their own copy, are
left untouched; the patch is safe to rerun. When a SteamLinuxRuntime
soldier runtime is found, its patch step is delegated to the configured
helper command and the helper's failure never fails this run.

Run as root, only the system-wide compatibilitytools.d directories are
patched and no runtime delegation happens.`,
	Example: `  # Patch everything that needs it
  protonpatch install

  # See what would happen first
  protonpatch install --dry-run

  # Review the exact change to each file
  protonpatch install --diff

  # Choose installations interactively
  protonpatch install --interactive

See Also: protonpatch list, protonpatch doctor`,
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, _ []string) error {
	return runInstallWithWriter(os.Stdout, logging.FromContext(cmd.Context()))
}

// runInstallWithWriter allows injecting a writer and logger for testing.
func runInstallWithWriter(w io.Writer, log *slog.Logger) error {
	conf, err := requireConfig()
	if err != nil {
		return err
	}

	runner := runnerFromConfig(conf, log)
	opts := install.Options{
		Privileged:  geteuid() == 0,
		DryRun:      installDryRun,
		SkipRuntime: installSkipRuntime,
		FixesDir:    installFixesDir,
	}
	if installInteractive {
		opts.Select = selectInstallations
	}

	report, err := runner.Run(opts)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrSteamNotFound):
			return errors.NewUserError(err,
				"Is Steam installed? Set steam_roots in the config if it lives somewhere unusual.")
		case errors.Is(err, fuzzyfinder.ErrAbort):
			return errors.NewUserError(errors.New("selection aborted"), "")
		}
		return errors.NewSystemError(err, "")
	}

	printInstallReport(w, report)
	return nil
}

// selectInstallations narrows the canonical installation list through a
// fuzzy finder. The preview pane shows each candidate's patch state.
func selectInstallations(installs []string) ([]string, error) {
	indexes, err := fuzzyfinder.FindMulti(
		installs,
		func(i int) string {
			return filepath.Base(installs[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, width, height int) string {
			if i == -1 {
				return ""
			}
			state, _ := proton.Inspect(installs[i])
			return fmt.Sprintf("Path: %s\nState: %s", installs[i], state)
		}),
	)
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		selected = append(selected, installs[idx])
	}
	return selected, nil
}

func printInstallReport(w io.Writer, report *install.Report) {
	if len(report.Installations) == 0 {
		fmt.Fprintln(w, "No Proton installations found.")
	}

	for _, inst := range report.Installations {
		switch {
		case inst.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", glyphSkipped, inst.Path, inst.Err)
		case inst.Result.Outcome == patch.AlreadyPatched:
			fmt.Fprintf(w, "%s %s (already patched)\n", glyphAlready, inst.Path)
		default:
			verb := "patched"
			if installDryRun {
				verb = "would patch"
			}
			if inst.Result.Created {
				verb += ", settings created from sample"
			}
			fmt.Fprintf(w, "%s %s (%s)\n", glyphPatched, inst.Path, verb)
			if installDiff || installDryRun {
				printSettingsDiff(w, inst.Result)
			}
		}
	}

	fmt.Fprintln(w)
	summary := fmt.Sprintf("Summary: %d patched, %d already patched, %d skipped",
		report.Patched, report.Already, report.Failed)
	if installDryRun {
		summary += " (dry run)"
	}
	fmt.Fprintln(w, summary)

	printRuntimeStatus(w, report)
}

// printSettingsDiff renders the before/after content of one settings file
// as a unified diff.
func printSettingsDiff(w io.Writer, res *patch.Result) {
	fromName := res.SettingsPath
	if res.Created {
		fromName += " (sample)"
	}
	diff := udiff.Unified(fromName, res.SettingsPath, string(res.Before), string(res.After))
	fmt.Fprint(w, dimColor.Sprint(diff))
}

// printRuntimeStatus reports what happened, or would happen, with the
// companion-runtime delegation.
func printRuntimeStatus(w io.Writer, report *install.Report) {
	if report.SoldierRoot == "" {
		return
	}

	switch {
	case report.Delegated && report.DelegateErr != nil:
		fmt.Fprintf(w, "%s runtime patch helper failed: %v (not fatal)\n",
			glyphSkipped, report.DelegateErr)
	case report.Delegated:
		fmt.Fprintf(w, "%s runtime patch delegated for %s\n", glyphPatched, report.SoldierRoot)
	case installDryRun && !installSkipRuntime:
		fmt.Fprintf(w, "%s would delegate runtime patch for %s\n", glyphPatched, report.SoldierRoot)
	}
}
