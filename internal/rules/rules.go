// Package rules implements the checking rules R1–R7. Each rule is a
// pure function over a parsed document or feature; rules never mutate
// their input and are order-independent.
package rules

import (
	"github.com/dshills/uclint/internal/feature"
	"github.com/dshills/uclint/internal/ruleset"
	"github.com/dshills/uclint/internal/schema"
	"github.com/dshills/uclint/internal/usecase"
)

// Rule is one checking rule. Exactly one of Document and Feature is
// set, depending on which input the rule inspects. Feature rules also
// receive the use-case document (nil when it failed to parse) so
// cross-document rules can compare against it.
type Rule struct {
	ID       schema.RuleID
	Severity schema.Severity
	Summary  string
	Patterns []ruleset.Pattern // denylist driving the rule, if any

	Document func(*usecase.Document) []schema.Violation
	Feature  func(*feature.Feature, *usecase.Document) []schema.Violation
}

// Checker applies an immutable, ordered rule list. Construct one per
// configuration with New; the checker holds no mutable state and is
// safe to reuse across inputs.
type Checker struct {
	rules []Rule
}

// New builds the rule list for the given configuration.
func New(cfg *ruleset.Config) *Checker {
	return &Checker{rules: []Rule{
		structureRule(cfg),
		preconditionsRule(cfg),
		flowLinearityRule(cfg),
		altFlowTriggerRule(),
		exceptionScopeRule(cfg),
		blackBoxRule(cfg),
		duplicateRule(cfg),
	}}
}

// Rules returns the ordered rule list.
func (c *Checker) Rules() []Rule {
	return c.rules
}

// CheckDocument runs all document rules.
func (c *Checker) CheckDocument(doc *usecase.Document) []schema.Violation {
	var out []schema.Violation
	for _, r := range c.rules {
		if r.Document != nil {
			out = append(out, r.Document(doc)...)
		}
	}
	return out
}

// CheckFeature runs all feature rules. doc may be nil when the use-case
// document failed to parse; cross-document rules are skipped then.
func (c *Checker) CheckFeature(ft *feature.Feature, doc *usecase.Document) []schema.Violation {
	var out []schema.Violation
	for _, r := range c.rules {
		if r.Feature != nil {
			out = append(out, r.Feature(ft, doc)...)
		}
	}
	return out
}

func violation(file string, line int, id schema.RuleID, sev schema.Severity, msg string) schema.Violation {
	return schema.Violation{
		Location: schema.Location{File: file, Line: line},
		RuleID:   id,
		Severity: sev,
		Message:  msg,
	}
}
