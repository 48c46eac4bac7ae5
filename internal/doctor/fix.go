package doctor

// Fixer marks a check as able to repair what it diagnosed. The doctor
// command probes for it after Run, and only when --fix is given.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult records one attempted repair.
type FixResult struct {
	Path  string // target of the repair
	Fixed bool
	// Action says what was done, or what stopped the repair.
	Action string
	Err    error
}

func fixApplied(path, action string) FixResult {
	return FixResult{Path: path, Fixed: true, Action: action}
}

func fixFailed(path, action string, err error) FixResult {
	return FixResult{Path: path, Action: action, Err: err}
}
