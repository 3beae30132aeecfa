package schema

import "fmt"

// Severity grades a violation. ERROR-severity violations drive the exit
// code; WARNING-severity violations are reported but never fail a run.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// SeverityOrdinal returns the numeric ordering for a severity.
// WARNING(0) < ERROR(1). Returns -1 for an unrecognised severity.
func SeverityOrdinal(s Severity) int {
	switch s {
	case SeverityWarning:
		return 0
	case SeverityError:
		return 1
	default:
		return -1
	}
}

// RuleID identifies one of the fixed checking rules.
type RuleID string

const (
	RuleStructure          RuleID = "R1"
	RulePreconditions      RuleID = "R2"
	RuleFlowLinearity      RuleID = "R3"
	RuleAltFlowTrigger     RuleID = "R4"
	RuleExceptionScope     RuleID = "R5"
	RuleScenarioBlackBox   RuleID = "R6"
	RuleScenarioDuplicates RuleID = "R7"
)

// Location points at a line in an input file.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Violation is a single rule finding. Violations are produced by rule
// functions, never mutated, and are valid only for one checking run.
type Violation struct {
	Location Location `json:"location"`
	RuleID   RuleID   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Diagnostic reports a parse failure in an input file. Unlike a
// Violation it is fatal for the run's exit status (exit code 2).
type Diagnostic struct {
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// Input captures the parameters used for this run.
type Input struct {
	UseCaseFile    string   `json:"usecase_file"`
	UseCaseHash    string   `json:"usecase_hash"` // SHA-256 of the raw file; empty if the file failed to parse
	FeatureFiles   []string `json:"feature_files"`
	RulesetVersion string   `json:"ruleset_version"`
}

// Summary holds the computed counts for the run.
type Summary struct {
	ErrorCount    int `json:"error_count"`
	WarningCount  int `json:"warning_count"`
	FilesChecked  int `json:"files_checked"`
	ParseFailures int `json:"parse_failures"`
}

// Report is the top-level output structure.
type Report struct {
	Tool        string       `json:"tool"`
	Version     string       `json:"version"`
	Input       Input        `json:"input"`
	Summary     Summary      `json:"summary"`
	Violations  []Violation  `json:"violations"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
