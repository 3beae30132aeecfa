package usecase

import (
	"crypto/sha256"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Canonical section names. Headers in the input are matched against
// these case-insensitively at any markdown heading level.
const (
	SectionDescription      = "Description"
	SectionPrimaryActor     = "Primary Actor"
	SectionPreconditions    = "Preconditions"
	SectionBasicFlow        = "Basic Flow"
	SectionAlternativeFlows = "Alternative Flows"
	SectionExceptionFlows   = "Exception Flows"
	SectionBusinessRules    = "Business Rules"
)

// Item is a single list entry or flow step with its source line.
type Item struct {
	Text string
	Line int
}

// AlternativeFlow is a documented deviation from the basic flow.
type AlternativeFlow struct {
	ID      string
	Trigger string
	Steps   []Item
	Line    int
}

// ExceptionFlow documents a runtime exception raised during a flow.
type ExceptionFlow struct {
	Name        string
	Description string
	Line        int
}

// Section records a top-level header and where it appeared.
type Section struct {
	Name string
	Line int
}

// Document is a parsed use-case document.
type Document struct {
	Path             string
	Hash             string // "sha256:<hex>" of the raw bytes
	Title            string
	Description      string
	PrimaryActor     string
	Preconditions    []Item
	BasicFlow        []Item
	AlternativeFlows []AlternativeFlow
	ExceptionFlows   []ExceptionFlow
	BusinessRules    []Item

	// UnknownSections holds headers outside the canonical vocabulary,
	// retained so structural rules can flag forbidden sections.
	UnknownSections []Section

	// SectionOrder lists every section header in file order, with
	// canonical names for recognized sections.
	SectionOrder []Section
}

// MalformedDocumentError reports a use-case document that cannot be
// checked: a required section is absent or unparseable.
type MalformedDocumentError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("%s:%d: malformed use-case document: %s", e.Path, e.Line, e.Reason)
}

var (
	headingPattern = regexp.MustCompile(`^(#+)\s+(.+?)\s*$`)
	listPattern    = regexp.MustCompile(`^(\s*)(?:[-*]|\d+[.)])\s+(.*)$`)
)

// canonicalSections maps lowercased header text to canonical names.
var canonicalSections = map[string]string{
	"description":       SectionDescription,
	"primary actor":     SectionPrimaryActor,
	"preconditions":     SectionPreconditions,
	"basic flow":        SectionBasicFlow,
	"alternative flows": SectionAlternativeFlows,
	"exception flows":   SectionExceptionFlows,
	"business rules":    SectionBusinessRules,
}

// Load reads a use-case document from disk and parses it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading use-case file: %w", err)
	}
	return Parse(path, data)
}

// Parse parses raw use-case text into a Document. It fails with
// *MalformedDocumentError when the Description, Primary Actor, or Basic
// Flow section is absent or empty.
func Parse(path string, data []byte) (*Document, error) {
	doc := &Document{
		Path: path,
		Hash: fmt.Sprintf("sha256:%x", sha256.Sum256(data)),
	}

	sectionLines := map[string]int{}
	current := ""
	var descLines []string
	var actorLines []string

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t")
		if line == "" {
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			name := strings.TrimRight(strings.TrimSpace(m[2]), ":")
			canonical, known := canonicalSections[strings.ToLower(name)]
			if !known && len(m[1]) == 1 && len(doc.SectionOrder) == 0 && doc.Title == "" {
				// A leading level-1 heading outside the vocabulary is the
				// document title, not a section.
				doc.Title = name
				continue
			}
			if known {
				current = canonical
				sectionLines[canonical] = lineNo
				doc.SectionOrder = append(doc.SectionOrder, Section{Name: canonical, Line: lineNo})
			} else {
				current = name
				doc.UnknownSections = append(doc.UnknownSections, Section{Name: name, Line: lineNo})
				doc.SectionOrder = append(doc.SectionOrder, Section{Name: name, Line: lineNo})
			}
			continue
		}

		switch current {
		case SectionDescription:
			descLines = append(descLines, strings.TrimSpace(line))
		case SectionPrimaryActor:
			actorLines = append(actorLines, strings.TrimSpace(line))
		case SectionPreconditions:
			doc.Preconditions = appendListLine(doc.Preconditions, line, lineNo)
		case SectionBasicFlow:
			doc.BasicFlow = appendListLine(doc.BasicFlow, line, lineNo)
		case SectionBusinessRules:
			doc.BusinessRules = appendListLine(doc.BusinessRules, line, lineNo)
		case SectionAlternativeFlows:
			doc.appendAlternativeFlowLine(line, lineNo)
		case SectionExceptionFlows:
			doc.appendExceptionFlowLine(line, lineNo)
		}
		// Content before any section header is ignored.
	}

	doc.Description = strings.Join(descLines, "\n")
	doc.PrimaryActor = strings.Join(actorLines, " ")

	if err := doc.validate(sectionLines); err != nil {
		return nil, err
	}
	return doc, nil
}

// validate enforces the parser contract: required sections must be
// present and non-empty.
func (d *Document) validate(sectionLines map[string]int) error {
	required := []struct {
		name  string
		empty bool
	}{
		{SectionDescription, d.Description == ""},
		{SectionPrimaryActor, d.PrimaryActor == ""},
		{SectionBasicFlow, len(d.BasicFlow) == 0},
	}
	for _, r := range required {
		line, present := sectionLines[r.name]
		if !present {
			return &MalformedDocumentError{
				Path:   d.Path,
				Line:   1,
				Reason: fmt.Sprintf("missing required section %q", r.name),
			}
		}
		if r.empty {
			return &MalformedDocumentError{
				Path:   d.Path,
				Line:   line,
				Reason: fmt.Sprintf("section %q is empty", r.name),
			}
		}
	}
	return nil
}

// appendListLine adds a list item, or extends the previous item when the
// line is a plain continuation rather than a new bullet.
func appendListLine(items []Item, line string, lineNo int) []Item {
	if m := listPattern.FindStringSubmatch(line); m != nil {
		return append(items, Item{Text: m[2], Line: lineNo})
	}
	text := strings.TrimSpace(line)
	if n := len(items); n > 0 {
		items[n-1].Text += " " + text
		return items
	}
	return append(items, Item{Text: text, Line: lineNo})
}

// appendAlternativeFlowLine handles the Alternative Flows section: a
// top-level bullet opens a flow ("<id>: <trigger>"), indented bullets
// are its steps.
func (d *Document) appendAlternativeFlowLine(line string, lineNo int) {
	m := listPattern.FindStringSubmatch(line)
	if m == nil {
		// Continuation of the current trigger text.
		if n := len(d.AlternativeFlows); n > 0 {
			d.AlternativeFlows[n-1].Trigger += " " + strings.TrimSpace(line)
		}
		return
	}

	indent, text := m[1], m[2]
	if indent == "" || len(d.AlternativeFlows) == 0 {
		id, trigger := splitNamedEntry(text)
		if id == "" {
			id = fmt.Sprintf("A%d", len(d.AlternativeFlows)+1)
		}
		d.AlternativeFlows = append(d.AlternativeFlows, AlternativeFlow{
			ID:      id,
			Trigger: trigger,
			Line:    lineNo,
		})
		return
	}

	flow := &d.AlternativeFlows[len(d.AlternativeFlows)-1]
	flow.Steps = append(flow.Steps, Item{Text: text, Line: lineNo})
}

// appendExceptionFlowLine handles the Exception Flows section, where
// each bullet is "<name>: <description>".
func (d *Document) appendExceptionFlowLine(line string, lineNo int) {
	m := listPattern.FindStringSubmatch(line)
	if m == nil {
		if n := len(d.ExceptionFlows); n > 0 {
			d.ExceptionFlows[n-1].Description += " " + strings.TrimSpace(line)
		}
		return
	}
	name, desc := splitNamedEntry(m[2])
	if name == "" {
		name, desc = desc, ""
	}
	d.ExceptionFlows = append(d.ExceptionFlows, ExceptionFlow{
		Name:        name,
		Description: desc,
		Line:        lineNo,
	})
}

// splitNamedEntry splits "<name>: <rest>" on the first colon. Returns an
// empty name when the line has no colon; rest is then the whole text.
func splitNamedEntry(text string) (name, rest string) {
	idx := strings.Index(text, ":")
	if idx < 0 {
		return "", strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:])
}
