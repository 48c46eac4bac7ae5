package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/protonpatch/protonpatch/internal/errors"
	"github.com/protonpatch/protonpatch/internal/logging"
	"github.com/protonpatch/protonpatch/internal/proton"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered Proton installations",
	Long: `List every Proton installation candidate and its patch state,
without changing anything.

States:
  unpatched      valid installation, activation line absent
  patched        user_settings.py already imports protonfixes
  bundled fixes  build ships its own protonfixes and is never patched
  invalid        required marker files are missing

Examples:
  # Show all candidates
  protonpatch list

  # Output as JSON
  protonpatch list --json`,
	RunE: runList,
}

// listEntry represents a candidate in JSON output format.
type listEntry struct {
	Path  string `json:"path"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func runList(cmd *cobra.Command, _ []string) error {
	return runListWithWriter(os.Stdout, logging.FromContext(cmd.Context()))
}

// runListWithWriter allows injecting a writer and logger for testing.
func runListWithWriter(w io.Writer, log *slog.Logger) error {
	conf, err := requireConfig()
	if err != nil {
		return err
	}

	runner := runnerFromConfig(conf, log)
	candidates, err := runner.Candidates(geteuid() == 0)
	if err != nil {
		if errors.Is(err, errors.ErrSteamNotFound) {
			return errors.NewUserError(err,
				"Is Steam installed? Set steam_roots in the config if it lives somewhere unusual.")
		}
		return errors.NewSystemError(err, "")
	}

	entries := make([]listEntry, 0, len(candidates))
	for _, dir := range candidates {
		state, err := proton.Inspect(dir)
		entry := listEntry{Path: dir, State: state.String()}
		if err != nil {
			entry.Error = err.Error()
		}
		entries = append(entries, entry)
	}

	if listJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return outputListTabular(w, entries)
}

// outputListTabular renders the candidates as an aligned table.
func outputListTabular(w io.Writer, entries []listEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No Proton installations found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\n", headerColor.Sprint("STATE"), headerColor.Sprint("PATH"))
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s %s\t%s\n", stateGlyph(e.State), e.State, e.Path)
	}
	return tw.Flush()
}

// stateGlyph maps a patch state to its status glyph.
func stateGlyph(state string) string {
	switch state {
	case proton.StatePatched.String():
		return glyphPatched
	case proton.StateUnpatched.String():
		return glyphUnpatched
	case proton.StateBundledFixes.String():
		return glyphAlready
	default:
		return glyphSkipped
	}
}
