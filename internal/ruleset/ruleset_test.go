package ruleset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Version1(t *testing.T) {
	cfg := Default()
	if cfg.Version != "1" {
		t.Errorf("Version = %q, want 1", cfg.Version)
	}
	if cfg.SimilarityThreshold != 1.0 {
		t.Errorf("SimilarityThreshold = %g, want 1.0", cfg.SimilarityThreshold)
	}
	for name, list := range map[string][]Pattern{
		"forbidden_sections": cfg.ForbiddenSections,
		"precondition_deny":  cfg.PreconditionDeny,
		"branching_deny":     cfg.BranchingDeny,
		"exception_deny":     cfg.ExceptionDeny,
		"technical_deny":     cfg.TechnicalDeny,
	} {
		if len(list) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestDefault_PatternsCompiled(t *testing.T) {
	cfg := Default()
	if !cfg.BranchingDeny[0].Match("only if the balance allows") {
		t.Error("branching pattern did not match 'if'")
	}
	if cfg.BranchingDeny[0].Match("the teller verifies identity") {
		t.Error("branching pattern matched 'if' inside a word")
	}
}

func writeRuleset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ruleset.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_CustomFile(t *testing.T) {
	path := writeRuleset(t, `
version: "team-a"
similarity_threshold: 0.8
technical_deny:
  - token: gRPC
    pattern: \bgRPC\b
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "team-a" {
		t.Errorf("Version = %q", cfg.Version)
	}
	if cfg.SimilarityThreshold != 0.8 {
		t.Errorf("SimilarityThreshold = %g", cfg.SimilarityThreshold)
	}
	if !cfg.TechnicalDeny[0].Match("calls gRPC endpoint") {
		t.Error("custom pattern did not match")
	}
}

func TestLoad_MissingVersion(t *testing.T) {
	path := writeRuleset(t, `
technical_deny:
  - token: x
    pattern: x
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected missing-version error, got %v", err)
	}
}

func TestLoad_InvalidRegex(t *testing.T) {
	path := writeRuleset(t, `
version: "1"
technical_deny:
  - token: broken
    pattern: "["
`)
	_, err := Load(path)
	if err == nil {
		t.Error("expected error for invalid regex, got nil")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	path := writeRuleset(t, `
version: "1"
branching_deny:
  - pattern: \bif\b
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Errorf("expected missing-token error, got %v", err)
	}
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	path := writeRuleset(t, `
version: "1"
similarity_threshold: 1.5
`)
	_, err := Load(path)
	if err == nil {
		t.Error("expected error for out-of-range threshold, got nil")
	}
}

func TestLoad_UnsetThresholdDefaultsToExact(t *testing.T) {
	path := writeRuleset(t, `version: "1"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SimilarityThreshold != 1.0 {
		t.Errorf("SimilarityThreshold = %g, want 1.0", cfg.SimilarityThreshold)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/ruleset.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestFirstMatch_ConfigOrder(t *testing.T) {
	patterns := []Pattern{
		{Token: "first", Pattern: `\bHTTP\b`},
		{Token: "second", Pattern: `\b200\b`},
	}
	for i := range patterns {
		if err := patterns[i].compile(); err != nil {
			t.Fatal(err)
		}
	}
	p, ok := FirstMatch(patterns, "the system returns HTTP 200")
	if !ok || p.Token != "first" {
		t.Errorf("FirstMatch = %v, %v; want first, true", p, ok)
	}
}
