package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/uclint/internal/feature"
	"github.com/dshills/uclint/internal/inputs"
	"github.com/dshills/uclint/internal/render"
	"github.com/dshills/uclint/internal/review"
	"github.com/dshills/uclint/internal/rules"
	"github.com/dshills/uclint/internal/ruleset"
	"github.com/dshills/uclint/internal/schema"
	"github.com/dshills/uclint/internal/usecase"
	"github.com/dshills/uclint/internal/watch"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// checkFlags holds the parsed flags for the check command.
type checkFlags struct {
	format      string
	out         string
	rulesetPath string
	similarity  float64
	watchMode   bool
	verbose     bool
}

func main() {
	root := &cobra.Command{
		Use:   "uclint",
		Short: "Check use-case documents and BDD feature files",
		Long:  "uclint validates use-case documents and Gherkin feature files against the structural and vocabulary rules of the use-case writing guide.",
	}

	var flags checkFlags
	checkCmd := &cobra.Command{
		Use:   "check <usecase-file> <feature-file>...",
		Short: "Check a use-case document and its feature files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], args[1:], flags)
		},
	}

	f := checkCmd.Flags()
	f.StringVar(&flags.format, "format", "text", "Output format: text, json, or md")
	f.StringVar(&flags.out, "out", "", "Write the report to a file instead of stdout")
	f.StringVar(&flags.rulesetPath, "ruleset", "", "YAML rule-set file (default: built-in version 1)")
	f.Float64Var(&flags.similarity, "similarity", 0, "Override the duplicate-rule similarity threshold (0 < t <= 1)")
	f.BoolVar(&flags.watchMode, "watch", false, "Re-run the check when an input file changes")
	f.BoolVar(&flags.verbose, "verbose", false, "Print processing steps to stderr")

	var rulesRulesetPath string
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active rules and their denylist patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd, rulesRulesetPath)
		},
	}
	rulesCmd.Flags().StringVar(&rulesRulesetPath, "ruleset", "", "YAML rule-set file (default: built-in version 1)")

	root.AddCommand(checkCmd, rulesCmd)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

func runCheck(usecasePath string, featureArgs []string, flags checkFlags) error {
	// --- Step 1: Validate flags ---
	if err := validateFlags(flags); err != nil {
		return codeError(3, "invalid flags: %s", err)
	}

	// --- Step 2: Load the rule set ---
	cfg, err := loadRuleset(flags.rulesetPath)
	if err != nil {
		return codeError(3, "loading ruleset: %s", err)
	}
	if flags.similarity != 0 {
		cfg.SimilarityThreshold = flags.similarity
	}
	logVerbose(flags.verbose, "Using ruleset version %s", cfg.Version)

	// --- Step 3: Resolve feature-file arguments ---
	featurePaths, err := inputs.Resolve(featureArgs)
	if err != nil {
		return codeError(3, "resolving feature files: %s", err)
	}
	logVerbose(flags.verbose, "Checking %s + %d feature file(s)", usecasePath, len(featurePaths))

	checker := rules.New(cfg)

	if !flags.watchMode {
		return executeCheck(usecasePath, featurePaths, checker, cfg.Version, flags)
	}

	// --- Watch mode: re-run on input changes until interrupted ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watched := append([]string{usecasePath}, featurePaths...)
	w, err := watch.New(watched, 500*time.Millisecond, nil)
	if err != nil {
		return codeError(3, "starting watcher: %s", err)
	}
	defer w.Close()

	run := func() {
		if err := executeCheck(usecasePath, featurePaths, checker, cfg.Version, flags); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	run()
	fmt.Fprintln(os.Stderr, "INFO: watching for changes (Ctrl-C to stop)")
	if err := w.Run(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
		return codeError(3, "watch: %s", err)
	}
	return nil
}

// executeCheck performs one full parse + check + report cycle. All
// inputs are parsed before any rule runs, so a malformed file never
// hides violations found in the well-formed ones.
func executeCheck(usecasePath string, featurePaths []string, checker *rules.Checker, rulesetVersion string, flags checkFlags) error {
	var violations []schema.Violation
	var diags []schema.Diagnostic

	doc, err := usecase.Load(usecasePath)
	if err != nil {
		var mde *usecase.MalformedDocumentError
		if !errors.As(err, &mde) {
			return codeError(3, "loading use-case document: %s", err)
		}
		diags = append(diags, schema.Diagnostic{
			Location: schema.Location{File: mde.Path, Line: mde.Line},
			Message:  mde.Reason,
		})
	}

	features := make([]*feature.Feature, 0, len(featurePaths))
	for _, path := range featurePaths {
		ft, err := feature.Load(path)
		if err != nil {
			var mse *feature.MalformedScenarioError
			if !errors.As(err, &mse) {
				return codeError(3, "loading feature file: %s", err)
			}
			diags = append(diags, schema.Diagnostic{
				Location: schema.Location{File: mse.Path, Line: mse.Line},
				Message:  mse.Reason,
			})
			continue
		}
		features = append(features, ft)
	}

	if doc != nil {
		violations = append(violations, checker.CheckDocument(doc)...)
	}
	for _, ft := range features {
		violations = append(violations, checker.CheckFeature(ft, doc)...)
	}

	review.Sort(violations)
	review.SortDiagnostics(diags)
	errCount, warnCount := review.Counts(violations)

	report := &schema.Report{
		Tool:    "uclint",
		Version: version,
		Input: schema.Input{
			UseCaseFile:    usecasePath,
			FeatureFiles:   featurePaths,
			RulesetVersion: rulesetVersion,
		},
		Summary: schema.Summary{
			ErrorCount:    errCount,
			WarningCount:  warnCount,
			FilesChecked:  1 + len(featurePaths),
			ParseFailures: len(diags),
		},
		Violations:  violations,
		Diagnostics: diags,
	}
	if doc != nil {
		report.Input.UseCaseHash = doc.Hash
	}

	if err := writeReport(report, flags); err != nil {
		return err
	}

	switch code := review.ExitCode(errCount, len(diags)); code {
	case 2:
		return codeError(2, "%s failed to parse", plural(len(diags), "input file"))
	case 1:
		return codeError(1, "found %s", plural(errCount, "error violation"))
	default:
		return nil
	}
}

func writeReport(report *schema.Report, flags checkFlags) error {
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid format: %s", err)
	}
	outputBytes, err := renderer.Render(report)
	if err != nil {
		return codeError(3, "rendering output: %s", err)
	}

	if flags.out != "" {
		if err := os.WriteFile(flags.out, outputBytes, 0o644); err != nil {
			return codeError(3, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(outputBytes); err != nil {
		return codeError(3, "writing output: %s", err)
	}
	// Ensure output ends with a newline for terminal friendliness.
	if len(outputBytes) > 0 && outputBytes[len(outputBytes)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// runRules prints the active rule list with the patterns each rule
// matches against.
func runRules(cmd *cobra.Command, rulesetPath string) error {
	cfg, err := loadRuleset(rulesetPath)
	if err != nil {
		return codeError(3, "loading ruleset: %s", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ruleset version %s\n\n", cfg.Version)
	for _, r := range rules.New(cfg).Rules() {
		fmt.Fprintf(out, "%s  %-7s  %s\n", r.ID, r.Severity, r.Summary)
		for _, p := range r.Patterns {
			fmt.Fprintf(out, "      %-20s %s\n", p.Token, p.Pattern)
		}
	}
	return nil
}

func loadRuleset(path string) (*ruleset.Config, error) {
	if path == "" {
		return ruleset.Default(), nil
	}
	return ruleset.Load(path)
}

// validateFlags returns an error if any flag value is invalid.
func validateFlags(flags checkFlags) error {
	switch flags.format {
	case "text", "json", "md":
	default:
		return fmt.Errorf("--format must be text, json, or md, got %q", flags.format)
	}
	if flags.similarity != 0 && (flags.similarity < 0 || flags.similarity > 1) {
		return fmt.Errorf("--similarity must be in (0, 1], got %g", flags.similarity)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// logVerbose writes a progress message to stderr when verbose mode is enabled.
func logVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
	}
}
