package rules

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/dshills/uclint/internal/ruleset"
	"github.com/dshills/uclint/internal/schema"
	"github.com/dshills/uclint/internal/usecase"
)

// structureRule (R1): the Description section must come first, and no
// forbidden section (Stakeholders, Notes) may appear.
func structureRule(cfg *ruleset.Config) Rule {
	return Rule{
		ID:       schema.RuleStructure,
		Severity: schema.SeverityError,
		Summary:  "Description first; no Stakeholders or Notes sections",
		Patterns: cfg.ForbiddenSections,
		Document: func(doc *usecase.Document) []schema.Violation {
			var out []schema.Violation
			if len(doc.SectionOrder) > 0 && doc.SectionOrder[0].Name != usecase.SectionDescription {
				first := doc.SectionOrder[0]
				out = append(out, violation(doc.Path, first.Line, schema.RuleStructure, schema.SeverityError,
					fmt.Sprintf("first section is %q; the Description section must come first", first.Name)))
			}
			for _, sec := range doc.UnknownSections {
				if p, ok := ruleset.FirstMatch(cfg.ForbiddenSections, sec.Name); ok {
					out = append(out, violation(doc.Path, sec.Line, schema.RuleStructure, schema.SeverityError,
						fmt.Sprintf("forbidden section %q (%s sections do not belong in a use-case document)", sec.Name, p.Token)))
				}
			}
			return out
		},
	}
}

// preconditionsRule (R2): preconditions state stable world-state, not
// feature-flag or runtime-configuration checks.
func preconditionsRule(cfg *ruleset.Config) Rule {
	return Rule{
		ID:       schema.RulePreconditions,
		Severity: schema.SeverityWarning,
		Summary:  "preconditions must not encode feature-flag or runtime checks",
		Patterns: cfg.PreconditionDeny,
		Document: func(doc *usecase.Document) []schema.Violation {
			var out []schema.Violation
			for _, pre := range doc.Preconditions {
				if p, ok := ruleset.FirstMatch(cfg.PreconditionDeny, pre.Text); ok {
					out = append(out, violation(doc.Path, pre.Line, schema.RulePreconditions, schema.SeverityWarning,
						fmt.Sprintf("precondition contains runtime-check language %q", p.Token)))
				}
			}
			return out
		},
	}
}

// flowLinearityRule (R3): basic-flow steps are linear; branching
// belongs in alternative flows. One violation per offending step.
func flowLinearityRule(cfg *ruleset.Config) Rule {
	return Rule{
		ID:       schema.RuleFlowLinearity,
		Severity: schema.SeverityError,
		Summary:  "basic-flow steps must not branch",
		Patterns: cfg.BranchingDeny,
		Document: func(doc *usecase.Document) []schema.Violation {
			var out []schema.Violation
			for i, step := range doc.BasicFlow {
				if p, ok := ruleset.FirstMatch(cfg.BranchingDeny, step.Text); ok {
					out = append(out, violation(doc.Path, step.Line, schema.RuleFlowLinearity, schema.SeverityError,
						fmt.Sprintf("basic flow step %d contains branching connective %q; move the branch to an alternative flow", i+1, p.Token)))
				}
			}
			return out
		},
	}
}

var stepRefPattern = regexp.MustCompile(`(?i)\bstep\s+(\d+)\b`)

// altFlowTriggerRule (R4): every alternative flow must anchor its
// trigger to a specific basic-flow step number.
func altFlowTriggerRule() Rule {
	return Rule{
		ID:       schema.RuleAltFlowTrigger,
		Severity: schema.SeverityError,
		Summary:  "alternative-flow triggers must reference a basic-flow step number",
		Document: func(doc *usecase.Document) []schema.Violation {
			var out []schema.Violation
			for _, flow := range doc.AlternativeFlows {
				m := stepRefPattern.FindStringSubmatch(flow.Trigger)
				if m == nil {
					out = append(out, violation(doc.Path, flow.Line, schema.RuleAltFlowTrigger, schema.SeverityError,
						fmt.Sprintf("alternative flow %s trigger %q does not reference a basic flow step", flow.ID, flow.Trigger)))
					continue
				}
				n, err := strconv.Atoi(m[1])
				if err != nil || n < 1 || n > len(doc.BasicFlow) {
					out = append(out, violation(doc.Path, flow.Line, schema.RuleAltFlowTrigger, schema.SeverityError,
						fmt.Sprintf("alternative flow %s references step %s but the basic flow has %d steps", flow.ID, m[1], len(doc.BasicFlow))))
				}
			}
			return out
		},
	}
}

// exceptionScopeRule (R5): exception flows document runtime exceptions,
// not infrastructure-unavailability conditions.
func exceptionScopeRule(cfg *ruleset.Config) Rule {
	return Rule{
		ID:       schema.RuleExceptionScope,
		Severity: schema.SeverityError,
		Summary:  "exception flows must not describe infrastructure outages",
		Patterns: cfg.ExceptionDeny,
		Document: func(doc *usecase.Document) []schema.Violation {
			var out []schema.Violation
			for _, exc := range doc.ExceptionFlows {
				text := exc.Name + " " + exc.Description
				if p, ok := ruleset.FirstMatch(cfg.ExceptionDeny, text); ok {
					out = append(out, violation(doc.Path, exc.Line, schema.RuleExceptionScope, schema.SeverityError,
						fmt.Sprintf("exception flow %q describes infrastructure unavailability (%q); preconditions or operations concerns, not exception flows, cover outages", exc.Name, p.Token)))
				}
			}
			return out
		},
	}
}
