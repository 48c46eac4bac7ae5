// Package doctor runs environment diagnostics: Steam discovery, Proton
// installation health, config syntax, and the runtime patch helper.
package doctor

// Severity classifies a check outcome.
type Severity int

const (
	// SeverityPass means the check found nothing wrong.
	SeverityPass Severity = iota

	// SeverityInfo carries context worth surfacing, not a problem.
	SeverityInfo

	// SeverityWarning flags something degraded but not blocking.
	SeverityWarning

	// SeverityError flags a condition that will make patching fail.
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

// String renders the severity for reports and logs.
func (s Severity) String() string {
	if s < SeverityPass || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// CheckResult is what a single check reports back.
type CheckResult struct {
	// Name is the identifier for this check.
	Name string `json:"name"`

	// Category groups related checks (e.g., "steam", "proton", "config").
	Category string `json:"category"`

	// Status is the outcome severity.
	Status Severity `json:"status"`

	// Message is the human-readable outcome.
	Message string `json:"message"`

	// Details carries check-specific context, such as the paths that
	// were examined.
	Details map[string]any `json:"details,omitempty"`

	// Fixable is set when the issue can be repaired with --fix.
	Fixable bool `json:"fixable,omitempty"`

	// FixHint tells the user how to resolve the issue by hand.
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary counts results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// tally counts one result into the summary.
func (s *Summary) tally(status Severity) {
	switch status {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	case SeverityError:
		s.Errors++
	}
}
