package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// Format selects the wire format for log output.
type Format string

const (
	// FormatText renders colorized key=value lines for terminals.
	FormatText Format = "text"
	// FormatJSON renders one JSON object per line.
	FormatJSON Format = "json"
)

// LevelTrace sits below Debug for very chatty discovery tracing.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps a -v flag count to a log level.
// Zero verbosity logs warnings and errors only; each additional -v
// lowers the threshold (1 = info, 2 = debug, 3+ = trace).
func LevelFromVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// Config describes the logger New builds.
type Config struct {
	// Level is the minimum level that gets emitted.
	Level slog.Level
	// Format picks text or JSON output.
	Format Format
	// Output receives log lines; nil means os.Stderr.
	Output io.Writer
}

// New builds a logger from cfg. Unrecognized formats fall back to
// text output.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
	}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = NewHandler(output, opts)
	}

	return slog.New(handler)
}

// NewDiscard returns a logger that drops every record. Quiet mode
// hands this to components that expect a non-nil logger.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testWriter routes handler output through t.Log so log lines show up
// interleaved with test output and only when the test fails or -v is set.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	// t.Log appends its own newline.
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a debug-level text logger bound to t.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  slog.LevelDebug,
		Format: FormatText,
		Output: &testWriter{t: t},
	})
}
