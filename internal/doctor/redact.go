package doctor

import (
	"strings"
)

// AnonymizePath replaces the home directory prefix in path with "~".
// Diagnostic reports get shared in bug trackers, and the home prefix is
// the only identifying data they carry.
func AnonymizePath(path, home string) string {
	if home == "" || path == "" {
		return path
	}

	if path == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(path, home+"/"); ok {
		return "~/" + rest
	}

	// Paths also show up embedded in messages and hints.
	return strings.ReplaceAll(path, home+"/", "~/")
}

// AnonymizeReport rewrites every path under home in the report to the
// "~" form. The report is modified in place.
func AnonymizeReport(report *Report, home string) {
	if report == nil || home == "" {
		return
	}

	for _, result := range report.Results {
		result.Message = AnonymizePath(result.Message, home)
		result.FixHint = AnonymizePath(result.FixHint, home)
		result.Details = anonymizeValue(result.Details, home).(map[string]any)
	}
}

// anonymizeValue walks the detail structures checks produce: strings,
// string slices, maps and slices of maps.
func anonymizeValue(v any, home string) any {
	switch val := v.(type) {
	case string:
		return AnonymizePath(val, home)
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = AnonymizePath(s, home)
		}
		return out
	case map[string]any:
		if val == nil {
			return val
		}
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = anonymizeValue(inner, home)
		}
		return out
	case map[string][]string:
		out := make(map[string][]string, len(val))
		for k, inner := range val {
			out[k] = anonymizeValue(inner, home).([]string)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = anonymizeValue(inner, home)
		}
		return out
	case []fileSyntax:
		out := make([]fileSyntax, len(val))
		for i, fr := range val {
			fr.Path = AnonymizePath(fr.Path, home)
			fr.Message = AnonymizePath(fr.Message, home)
			out[i] = fr
		}
		return out
	default:
		return v
	}
}
