package rules

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/uclint/internal/feature"
	"github.com/dshills/uclint/internal/ruleset"
	"github.com/dshills/uclint/internal/schema"
	"github.com/dshills/uclint/internal/usecase"
)

// blackBoxRule (R6): scenario steps describe observable behaviour in
// business language; technical-implementation tokens are forbidden.
// One violation per offending step, citing the first matched token.
func blackBoxRule(cfg *ruleset.Config) Rule {
	return Rule{
		ID:       schema.RuleScenarioBlackBox,
		Severity: schema.SeverityError,
		Summary:  "scenario steps must use black-box business language",
		Patterns: cfg.TechnicalDeny,
		Feature: func(ft *feature.Feature, _ *usecase.Document) []schema.Violation {
			var out []schema.Violation
			for _, sc := range ft.Scenarios {
				for _, step := range sc.Steps {
					if p, ok := ruleset.FirstMatch(cfg.TechnicalDeny, step.Text); ok {
						out = append(out, violation(ft.Path, step.Line, schema.RuleScenarioBlackBox, schema.SeverityError,
							fmt.Sprintf("step contains technical token %q: %q", p.Token, step.Text)))
					}
				}
			}
			return out
		},
	}
}

// duplicateRule (R7): the feature file must not restate business rules
// already recorded in the use-case document. With the default threshold
// of 1.0 a rule counts as duplicated when it appears verbatim as a
// substring; lower thresholds compare description lines by Levenshtein
// ratio. At most one violation per business rule per file.
func duplicateRule(cfg *ruleset.Config) Rule {
	return Rule{
		ID:       schema.RuleScenarioDuplicates,
		Severity: schema.SeverityWarning,
		Summary:  "feature files must not duplicate use-case business rules",
		Feature: func(ft *feature.Feature, doc *usecase.Document) []schema.Violation {
			if doc == nil {
				return nil
			}
			var out []schema.Violation
			for _, rule := range doc.BusinessRules {
				text := strings.TrimSpace(rule.Text)
				if text == "" {
					continue
				}
				if cfg.SimilarityThreshold >= 1 {
					if idx := strings.Index(ft.Raw, text); idx >= 0 {
						line := 1 + strings.Count(ft.Raw[:idx], "\n")
						out = append(out, violation(ft.Path, line, schema.RuleScenarioDuplicates, schema.SeverityWarning,
							fmt.Sprintf("duplicates business rule %q from the use-case document", text)))
					}
					continue
				}
				if v, ok := nearDuplicate(ft, text, cfg.SimilarityThreshold); ok {
					out = append(out, v)
				}
			}
			return out
		},
	}
}

// nearDuplicate scans the feature description lines for the closest
// match to rule and reports it when the similarity meets the threshold.
func nearDuplicate(ft *feature.Feature, rule string, threshold float64) (schema.Violation, bool) {
	for _, item := range ft.Description {
		sim := similarity(rule, item.Text)
		if sim >= threshold {
			return violation(ft.Path, item.Line, schema.RuleScenarioDuplicates, schema.SeverityWarning,
				fmt.Sprintf("near-duplicate of business rule %q (similarity %.2f)", rule, sim)), true
		}
	}
	return schema.Violation{}, false
}

// similarity is 1 - levenshtein/maxlen over the two strings.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	dist := dmp.DiffLevenshtein(diffs)
	return 1 - float64(dist)/float64(longest)
}
