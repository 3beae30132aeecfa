package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/uclint/internal/schema"
)

func sampleReport() *schema.Report {
	return &schema.Report{
		Tool:    "uclint",
		Version: "1.0",
		Input: schema.Input{
			UseCaseFile:    "usecase.md",
			FeatureFiles:   []string{"withdraw.feature"},
			RulesetVersion: "1",
		},
		Summary: schema.Summary{
			ErrorCount:   2,
			WarningCount: 1,
			FilesChecked: 2,
		},
		Violations: []schema.Violation{
			{
				Location: schema.Location{File: "usecase.md", Line: 14},
				RuleID:   schema.RuleFlowLinearity,
				Severity: schema.SeverityError,
				Message:  `basic flow step 2 contains branching connective "if"; move the branch to an alternative flow`,
			},
			{
				Location: schema.Location{File: "usecase.md", Line: 20},
				RuleID:   schema.RulePreconditions,
				Severity: schema.SeverityWarning,
				Message:  `precondition contains runtime-check language "feature flag"`,
			},
			{
				Location: schema.Location{File: "withdraw.feature", Line: 6},
				RuleID:   schema.RuleScenarioBlackBox,
				Severity: schema.SeverityError,
				Message:  `step contains technical token "HTTP": "the system should return HTTP 200"`,
			},
		},
	}
}

func TestNewRenderer_Text(t *testing.T) {
	r, err := NewRenderer("text")
	if err != nil {
		t.Fatalf("NewRenderer text: %v", err)
	}
	out, err := r.Render(sampleReport())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "Errors:") {
		t.Errorf("text missing Errors group: %q", s)
	}
	if !strings.Contains(s, "Warnings:") {
		t.Errorf("text missing Warnings group: %q", s)
	}
	if !strings.Contains(s, "usecase.md:14: R3") {
		t.Errorf("text missing location/rule: %q", s)
	}
	if !strings.Contains(s, "2 errors, 1 warning") {
		t.Errorf("text missing summary: %q", s)
	}
}

func TestNewRenderer_TextErrorsBeforeWarnings(t *testing.T) {
	r, _ := NewRenderer("text")
	out, err := r.Render(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Index(s, "Errors:") > strings.Index(s, "Warnings:") {
		t.Errorf("warnings rendered before errors: %q", s)
	}
}

func TestNewRenderer_TextParseFailures(t *testing.T) {
	report := sampleReport()
	report.Diagnostics = []schema.Diagnostic{
		{
			Location: schema.Location{File: "broken.feature", Line: 5},
			Message:  `step line lacks a recognized keyword: "The customer does something"`,
		},
	}
	report.Summary.ParseFailures = 1

	r, _ := NewRenderer("text")
	out, err := r.Render(report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "broken.feature:5") {
		t.Errorf("text missing parse failure: %q", out)
	}
}

func TestNewRenderer_JSON(t *testing.T) {
	r, err := NewRenderer("json")
	if err != nil {
		t.Fatalf("NewRenderer json: %v", err)
	}
	out, err := r.Render(sampleReport())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var decoded schema.Report
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out)
	}
	if decoded.Summary.ErrorCount != 2 {
		t.Errorf("error count mismatch: got %d", decoded.Summary.ErrorCount)
	}
	if len(decoded.Violations) != 3 {
		t.Errorf("got %d violations, want 3", len(decoded.Violations))
	}
}

func TestNewRenderer_Markdown(t *testing.T) {
	r, err := NewRenderer("md")
	if err != nil {
		t.Fatalf("NewRenderer md: %v", err)
	}
	out, err := r.Render(sampleReport())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "# uclint Report") {
		t.Errorf("markdown missing header: %q", s)
	}
	if !strings.Contains(s, "## Errors") {
		t.Errorf("markdown missing errors section: %q", s)
	}
	if !strings.Contains(s, "R6") {
		t.Errorf("markdown missing rule ID: %q", s)
	}
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	_, err := NewRenderer("xml")
	if err == nil {
		t.Error("expected error for unknown format, got nil")
	}
}

func TestRender_ByteIdenticalAcrossRuns(t *testing.T) {
	for _, format := range []string{"text", "json", "md"} {
		r, err := NewRenderer(format)
		if err != nil {
			t.Fatal(err)
		}
		first, err := r.Render(sampleReport())
		if err != nil {
			t.Fatal(err)
		}
		second, err := r.Render(sampleReport())
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("%s renderer output differs across runs", format)
		}
	}
}
