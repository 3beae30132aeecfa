package feature

import (
	"errors"
	"strings"
	"testing"
)

const validFeature = `Feature: Withdraw cash
  An account holder takes cash out of an account.

  Scenario: Successful withdrawal
    Given an account holder with an open account
    And the account has sufficient balance
    When the account holder requests a withdrawal
    Then the account holder receives the cash
    But the reserved amount is no longer available
`

func TestParse_ValidFeature(t *testing.T) {
	ft, err := Parse("wd.feature", []byte(validFeature))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ft.Name != "Withdraw cash" {
		t.Errorf("Name = %q", ft.Name)
	}
	if len(ft.Description) != 1 {
		t.Errorf("got %d description lines, want 1", len(ft.Description))
	}
	if len(ft.Scenarios) != 1 {
		t.Fatalf("got %d scenarios, want 1", len(ft.Scenarios))
	}
	if got := len(ft.Scenarios[0].Steps); got != 5 {
		t.Errorf("got %d steps, want 5", got)
	}
}

func TestParse_AndButInheritKind(t *testing.T) {
	ft, err := Parse("wd.feature", []byte(validFeature))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	steps := ft.Scenarios[0].Steps
	if steps[1].Keyword != "And" || steps[1].Kind != KindGiven {
		t.Errorf("step 2 = %s/%s, want And/Given", steps[1].Keyword, steps[1].Kind)
	}
	if steps[4].Keyword != "But" || steps[4].Kind != KindThen {
		t.Errorf("step 5 = %s/%s, want But/Then", steps[4].Keyword, steps[4].Kind)
	}
}

func TestParse_StepTextPreservedVerbatim(t *testing.T) {
	ft, err := Parse("wd.feature", []byte(validFeature))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "an account holder with an open account"
	if ft.Scenarios[0].Steps[0].Text != want {
		t.Errorf("step text = %q, want %q", ft.Scenarios[0].Steps[0].Text, want)
	}
}

func TestParse_UnrecognizedStepKeyword(t *testing.T) {
	input := `Feature: Broken

  Scenario: Bad step
    Given a customer
    The customer does something
`
	_, err := Parse("broken.feature", []byte(input))
	var mse *MalformedScenarioError
	if !errors.As(err, &mse) {
		t.Fatalf("expected MalformedScenarioError, got %v", err)
	}
	if mse.Line != 5 {
		t.Errorf("Line = %d, want 5", mse.Line)
	}
	if !strings.Contains(mse.Reason, "keyword") {
		t.Errorf("Reason = %q, want keyword mention", mse.Reason)
	}
}

func TestParse_AndWithoutAntecedent(t *testing.T) {
	input := `Feature: Broken

  Scenario: And first
    And something happened
`
	_, err := Parse("broken.feature", []byte(input))
	var mse *MalformedScenarioError
	if !errors.As(err, &mse) {
		t.Fatalf("expected MalformedScenarioError, got %v", err)
	}
}

func TestParse_MissingFeatureHeader(t *testing.T) {
	input := `Scenario: Orphan
    Given a customer
`
	_, err := Parse("orphan.feature", []byte(input))
	var mse *MalformedScenarioError
	if !errors.As(err, &mse) {
		t.Fatalf("expected MalformedScenarioError, got %v", err)
	}
}

func TestParse_NoScenarios(t *testing.T) {
	input := "Feature: Empty\n  Just a description.\n"
	_, err := Parse("empty.feature", []byte(input))
	var mse *MalformedScenarioError
	if !errors.As(err, &mse) {
		t.Fatalf("expected MalformedScenarioError, got %v", err)
	}
}

func TestParse_TagsAndCommentsIgnored(t *testing.T) {
	input := `@billing
Feature: Tagged

  # a comment
  @smoke
  Scenario: Tagged scenario
    Given a customer
    When the customer acts
    Then something observable happens
`
	ft, err := Parse("tagged.feature", []byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ft.Scenarios) != 1 || len(ft.Scenarios[0].Steps) != 3 {
		t.Errorf("scenarios = %+v", ft.Scenarios)
	}
}

func TestParse_ScenarioOutlineWithExamples(t *testing.T) {
	input := `Feature: Limits

  Scenario Outline: Withdrawal near the limit
    Given a daily limit of <limit>
    When the account holder withdraws <amount>
    Then the withdrawal is <outcome>

    Examples:
      | limit | amount | outcome  |
      | high  | small  | accepted |
      | low   | large  | declined |
`
	ft, err := Parse("limits.feature", []byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !ft.Scenarios[0].Outline {
		t.Error("scenario not marked as outline")
	}
	if len(ft.Scenarios[0].Steps) != 3 {
		t.Errorf("got %d steps, want 3", len(ft.Scenarios[0].Steps))
	}
}

func TestParse_BackgroundSteps(t *testing.T) {
	input := `Feature: With background

  Background:
    Given an open account

  Scenario: Something
    When the account holder acts
    Then something observable happens
`
	ft, err := Parse("bg.feature", []byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ft.Scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2 (background + scenario)", len(ft.Scenarios))
	}
	if !ft.Scenarios[0].Background {
		t.Error("first entry not marked as background")
	}
}

func TestParse_DocStringContentSkipped(t *testing.T) {
	input := `Feature: Doc strings

  Scenario: With a doc string
    Given a note that reads
      """
      anything at all, no keyword needed
      """
    Then the note is stored
`
	ft, err := Parse("doc.feature", []byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ft.Scenarios[0].Steps) != 2 {
		t.Errorf("got %d steps, want 2", len(ft.Scenarios[0].Steps))
	}
}

func TestParse_RawPreserved(t *testing.T) {
	ft, err := Parse("wd.feature", []byte(validFeature))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ft.Raw != validFeature {
		t.Error("Raw does not match input")
	}
}
