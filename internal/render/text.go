package render

import (
	"fmt"
	"strings"

	"github.com/dshills/uclint/internal/schema"
)

type textRenderer struct{}

// Render produces the default plain-text report: violations grouped by
// severity (errors first), parse failures, then a one-line summary.
// Output is byte-identical across runs on unchanged input.
func (r *textRenderer) Render(report *schema.Report) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s — %s (ruleset %s)\n", report.Tool, report.Version,
		report.Input.UseCaseFile, report.Input.RulesetVersion)

	writeGroup(&sb, "Errors", report.Violations, schema.SeverityError)
	writeGroup(&sb, "Warnings", report.Violations, schema.SeverityWarning)

	if len(report.Diagnostics) > 0 {
		sb.WriteString("\nParse failures:\n")
		for _, d := range report.Diagnostics {
			fmt.Fprintf(&sb, "  %s: %s\n", d.Location, d.Message)
		}
	}

	fmt.Fprintf(&sb, "\n%s, %s, %d of %d file(s) failed to parse\n",
		plural(report.Summary.ErrorCount, "error"),
		plural(report.Summary.WarningCount, "warning"),
		report.Summary.ParseFailures,
		report.Summary.FilesChecked)

	return []byte(sb.String()), nil
}

func writeGroup(sb *strings.Builder, title string, violations []schema.Violation, sev schema.Severity) {
	var group []schema.Violation
	for _, v := range violations {
		if v.Severity == sev {
			group = append(group, v)
		}
	}
	if len(group) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, v := range group {
		fmt.Fprintf(sb, "  %s: %s %s\n", v.Location, v.RuleID, v.Message)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
