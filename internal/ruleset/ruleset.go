// Package ruleset loads the data-driven checking configuration: the
// denylist patterns each rule matches against and the duplicate
// detection threshold. A versioned default ships in the binary; teams
// can supply their own YAML file to change vocabulary without code
// changes.
package ruleset

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Pattern pairs a display token with a compiled regular expression.
type Pattern struct {
	Token   string `yaml:"token"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Match reports whether s matches the pattern.
func (p *Pattern) Match(s string) bool {
	return p.re.MatchString(s)
}

// Config is one versioned rule-set.
type Config struct {
	Version             string    `yaml:"version"`
	SimilarityThreshold float64   `yaml:"similarity_threshold"`
	ForbiddenSections   []Pattern `yaml:"forbidden_sections"`
	PreconditionDeny    []Pattern `yaml:"precondition_deny"`
	BranchingDeny       []Pattern `yaml:"branching_deny"`
	ExceptionDeny       []Pattern `yaml:"exception_deny"`
	TechnicalDeny       []Pattern `yaml:"technical_deny"`
}

// Default returns the embedded rule-set. The embedded file is part of
// the binary, so a parse failure is a programming error.
func Default() *Config {
	cfg, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("ruleset: embedded default is invalid: %v", err))
	}
	return cfg
}

// Load reads and compiles a rule-set file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset file: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if cfg.Version == "" {
		return nil, fmt.Errorf("missing version")
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 1.0
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("similarity_threshold %g outside (0, 1]", cfg.SimilarityThreshold)
	}

	lists := map[string][]Pattern{
		"forbidden_sections": cfg.ForbiddenSections,
		"precondition_deny":  cfg.PreconditionDeny,
		"branching_deny":     cfg.BranchingDeny,
		"exception_deny":     cfg.ExceptionDeny,
		"technical_deny":     cfg.TechnicalDeny,
	}
	for name, list := range lists {
		for i := range list {
			if err := list[i].compile(); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
			}
		}
	}
	return &cfg, nil
}

func (p *Pattern) compile() error {
	if p.Token == "" {
		return fmt.Errorf("missing token")
	}
	if p.Pattern == "" {
		return fmt.Errorf("token %q: missing pattern", p.Token)
	}
	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return fmt.Errorf("token %q: %w", p.Token, err)
	}
	p.re = re
	return nil
}

// FirstMatch returns the first pattern in the list matching s.
// Patterns are checked in configuration order so that messages cite a
// stable token when several patterns would match.
func FirstMatch(patterns []Pattern, s string) (*Pattern, bool) {
	for i := range patterns {
		if patterns[i].Match(s) {
			return &patterns[i], true
		}
	}
	return nil, false
}
