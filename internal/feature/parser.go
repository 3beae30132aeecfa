package feature

import (
	"fmt"
	"os"
	"strings"
)

// Kind is the logical step keyword after And/But resolution.
type Kind string

const (
	KindGiven Kind = "Given"
	KindWhen  Kind = "When"
	KindThen  Kind = "Then"
)

// Step is a single scenario step. Text is preserved verbatim for
// vocabulary checks.
type Step struct {
	Keyword string // keyword as written: Given, When, Then, And, But, *
	Kind    Kind
	Text    string
	Line    int
}

// Item is a free-text description line with its source line.
type Item struct {
	Text string
	Line int
}

// Scenario is one behavioural example.
type Scenario struct {
	Name       string
	Line       int
	Steps      []Step
	Outline    bool
	Background bool
}

// Feature is a parsed feature file.
type Feature struct {
	Path        string
	Name        string
	NameLine    int
	Description []Item // free text between Feature: and the first scenario
	Scenarios   []Scenario
	Raw         string // verbatim file content
}

// MalformedScenarioError reports a feature file that cannot be checked.
type MalformedScenarioError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedScenarioError) Error() string {
	return fmt.Sprintf("%s:%d: malformed scenario: %s", e.Path, e.Line, e.Reason)
}

// stepKeywords in match order; multi-word keywords are not needed here.
var stepKeywords = []struct {
	keyword string
	kind    Kind // empty means "inherit from previous step"
}{
	{"Given", KindGiven},
	{"When", KindWhen},
	{"Then", KindThen},
	{"And", ""},
	{"But", ""},
	{"*", ""},
}

// Load reads a feature file from disk and parses it.
func Load(path string) (*Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature file: %w", err)
	}
	return Parse(path, data)
}

// Parse parses feature-file text. It fails with *MalformedScenarioError
// on a step line lacking a recognized keyword prefix, on an And/But/*
// step with no antecedent, and on files without a Feature header or
// without scenarios.
func Parse(path string, data []byte) (*Feature, error) {
	ft := &Feature{Path: path, Raw: string(data)}

	inDocString := false
	sawFeature := false

	lines := strings.Split(strings.ReplaceAll(ft.Raw, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, `"""`) || strings.HasPrefix(line, "```") {
			inDocString = !inDocString
			continue
		}
		if inDocString {
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
			continue
		}
		// Data-table rows belong to the preceding step.
		if strings.HasPrefix(line, "|") {
			continue
		}

		if name, ok := cutKeyword(line, "Feature:"); ok {
			if sawFeature {
				return nil, malformed(path, lineNo, "duplicate Feature header")
			}
			sawFeature = true
			ft.Name = name
			ft.NameLine = lineNo
			continue
		}
		if !sawFeature {
			return nil, malformed(path, lineNo, "content before Feature header")
		}

		if name, ok := cutKeyword(line, "Background:"); ok {
			ft.Scenarios = append(ft.Scenarios, Scenario{Name: name, Line: lineNo, Background: true})
			continue
		}
		if name, ok := cutKeyword(line, "Scenario Outline:"); ok {
			ft.Scenarios = append(ft.Scenarios, Scenario{Name: name, Line: lineNo, Outline: true})
			continue
		}
		if name, ok := cutKeyword(line, "Scenario:"); ok {
			ft.Scenarios = append(ft.Scenarios, Scenario{Name: name, Line: lineNo})
			continue
		}
		if _, ok := cutKeyword(line, "Examples:"); ok {
			if n := len(ft.Scenarios); n == 0 || !ft.Scenarios[n-1].Outline {
				return nil, malformed(path, lineNo, "Examples block outside a Scenario Outline")
			}
			continue
		}

		if len(ft.Scenarios) == 0 {
			// Free description text under the Feature header.
			ft.Description = append(ft.Description, Item{Text: line, Line: lineNo})
			continue
		}

		step, err := parseStep(path, line, lineNo, ft.Scenarios[len(ft.Scenarios)-1].Steps)
		if err != nil {
			return nil, err
		}
		sc := &ft.Scenarios[len(ft.Scenarios)-1]
		sc.Steps = append(sc.Steps, step)
	}

	if inDocString {
		return nil, malformed(path, len(lines), "unterminated doc string")
	}
	if !sawFeature {
		return nil, malformed(path, 1, "missing Feature header")
	}
	hasScenario := false
	for _, sc := range ft.Scenarios {
		if !sc.Background {
			hasScenario = true
			break
		}
	}
	if !hasScenario {
		return nil, malformed(path, ft.NameLine, "feature has no scenarios")
	}
	return ft, nil
}

// parseStep matches a step keyword and resolves And/But/* against the
// preceding step's kind.
func parseStep(path, line string, lineNo int, prev []Step) (Step, error) {
	for _, kw := range stepKeywords {
		text, ok := cutKeyword(line, kw.keyword)
		if !ok {
			continue
		}
		kind := kw.kind
		if kind == "" {
			if len(prev) == 0 {
				return Step{}, malformed(path, lineNo,
					fmt.Sprintf("%s step has no preceding Given/When/Then", kw.keyword))
			}
			kind = prev[len(prev)-1].Kind
		}
		return Step{Keyword: kw.keyword, Kind: kind, Text: text, Line: lineNo}, nil
	}
	return Step{}, malformed(path, lineNo,
		fmt.Sprintf("step line lacks a recognized keyword: %q", line))
}

// cutKeyword strips a leading keyword from line. A word keyword must be
// followed by whitespace; header keywords ending in ':' may be followed
// directly by the name.
func cutKeyword(line, keyword string) (string, bool) {
	if !strings.HasPrefix(line, keyword) {
		return "", false
	}
	rest := line[len(keyword):]
	if !strings.HasSuffix(keyword, ":") && keyword != "*" {
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			return "", false
		}
	}
	return strings.TrimSpace(rest), true
}

func malformed(path string, line int, reason string) *MalformedScenarioError {
	return &MalformedScenarioError{Path: path, Line: line, Reason: reason}
}
