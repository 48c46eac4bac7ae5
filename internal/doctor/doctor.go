package doctor

import (
	"log/slog"
	"time"
)

// Check is a single environment diagnostic. Checks never mutate the
// host; repairs go through the separate Fixer interface.
type Check interface {
	// Name identifies the check in reports, e.g. "steam-root".
	Name() string

	// Category groups related checks (e.g., "steam", "config").
	Category() string

	// Run performs the diagnostic and reports what it found.
	Run() *CheckResult
}

// Runner executes checks in registration order and tallies the outcome.
type Runner struct {
	checks []Check
	logger *slog.Logger
}

// NewRunner returns an empty Runner. Per-check timing and status are
// logged at debug level as each check completes.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// AddCheck appends a check to the run order.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes every registered check. A failing check does not stop
// the run; its severity is recorded and the next check proceeds.
func (r *Runner) Run() *Report {
	report := &Report{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		start := time.Now()
		result := check.Run()
		r.logger.Debug("check finished",
			"name", check.Name(),
			"status", result.Status.String(),
			"elapsed", time.Since(start),
		)
		report.Results = append(report.Results, result)
		report.Summary.tally(result.Status)
	}

	return report
}

// Report is the aggregate outcome of a diagnostic run.
type Report struct {
	// Timestamp is the UTC instant the run began.
	Timestamp time.Time `json:"timestamp"`

	// Results holds each check's outcome in run order.
	Results []*CheckResult `json:"results"`

	// Summary counts results by severity.
	Summary Summary `json:"summary"`
}

// HasErrors reports whether any check ended at SeverityError.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether any check ended at SeverityWarning.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}
