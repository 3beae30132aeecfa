package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dshills/uclint/internal/schema"
)

type markdownRenderer struct{}

var mdTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"bySeverity": func(vs []schema.Violation, sev string) []schema.Violation {
		var out []schema.Violation
		for _, v := range vs {
			if string(v.Severity) == sev {
				out = append(out, v)
			}
		}
		return out
	},
}).Parse(`# uclint Report

**Use case:** {{ .Input.UseCaseFile }}
**Ruleset:** {{ .Input.RulesetVersion }}
**Errors:** {{ .Summary.ErrorCount }} | **Warnings:** {{ .Summary.WarningCount }} | **Parse failures:** {{ .Summary.ParseFailures }}
{{ with bySeverity .Violations "ERROR" }}
---

## Errors
{{ range . }}
- {{ .Location }} · {{ .RuleID }} — {{ .Message }}
{{- end }}
{{ end }}{{ with bySeverity .Violations "WARNING" }}
---

## Warnings
{{ range . }}
- {{ .Location }} · {{ .RuleID }} — {{ .Message }}
{{- end }}
{{ end }}{{ if .Diagnostics }}
---

## Parse failures
{{ range .Diagnostics }}
- {{ .Location }} — {{ .Message }}
{{- end }}
{{ end }}`))

func (r *markdownRenderer) Render(report *schema.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
