package review

import (
	"sort"

	"github.com/dshills/uclint/internal/schema"
)

// Sort orders violations by (file, line, rule ID) for deterministic
// output. Rules run order-independently; this is the only ordering the
// report guarantees.
func Sort(violations []schema.Violation) {
	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		return a.RuleID < b.RuleID
	})
}

// SortDiagnostics orders parse diagnostics by (file, line).
func SortDiagnostics(diags []schema.Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		return a.Location.Line < b.Location.Line
	})
}

// Counts returns the error and warning counts.
func Counts(violations []schema.Violation) (errors, warnings int) {
	for _, v := range violations {
		switch v.Severity {
		case schema.SeverityError:
			errors++
		case schema.SeverityWarning:
			warnings++
		}
	}
	return
}

// ExitCode computes the process exit status: 2 when any input failed to
// parse, 1 when error-severity violations exist, 0 otherwise. Warnings
// never affect the exit code.
func ExitCode(errors, parseFailures int) int {
	switch {
	case parseFailures > 0:
		return 2
	case errors > 0:
		return 1
	default:
		return 0
	}
}
