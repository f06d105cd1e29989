package rules

import (
	"testing"

	"github.com/ludo-technologies/revu/domain"
)

func mustCompileRule(t *testing.T, spec patternSpec) *PatternRule {
	t.Helper()
	rule, err := compilePatternRule(spec, domain.SourcePattern)
	if err != nil {
		t.Fatalf("compilePatternRule failed: %v", err)
	}
	return rule
}

func TestPatternRule_EvaluateReportsLineAndColumn(t *testing.T) {
	rule := mustCompileRule(t, patternSpec{
		ID:       "command-injection",
		Severity: "critical",
		Scope:    "code",
		Message:  "shell command built from concatenation",
		Patterns: []string{`(?i)\bexec\s*\(\s*["'][^"']*["']\s*\+`},
	})

	unit := domain.ReviewUnit{
		Path: "run.js",
		Content: []byte("const cp = require('child_process');\n" +
			"cp.exec(\"convert \" + userFile);\n"),
	}

	findings := rule.Evaluate(unit)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Line != 2 {
		t.Errorf("Line = %d, want 2", f.Line)
	}
	if f.Column < 1 {
		t.Errorf("Column = %d, want 1-based", f.Column)
	}
	if f.Severity != domain.SeverityCritical {
		t.Errorf("Severity = %s, want critical", f.Severity)
	}
	if f.Source != domain.SourcePattern {
		t.Errorf("Source = %s, want pattern", f.Source)
	}
}

func TestPatternRule_OneFindingPerLine(t *testing.T) {
	rule := mustCompileRule(t, patternSpec{
		ID:       "debug-statement",
		Severity: "info",
		Patterns: []string{`\bconsole\.log\s*\(`, `\bdebugger\b`},
	})

	unit := domain.ReviewUnit{
		Path:    "dev.js",
		Content: []byte("console.log('x'); debugger;\n"),
	}

	if findings := rule.Evaluate(unit); len(findings) != 1 {
		t.Errorf("expected at most one finding per line, got %d", len(findings))
	}
}

func TestPatternRule_AppliesToScope(t *testing.T) {
	codeRule := mustCompileRule(t, patternSpec{
		ID: "r1", Severity: "low", Scope: "code", Patterns: []string{`x`},
	})
	docsRule := mustCompileRule(t, patternSpec{
		ID: "r2", Severity: "low", Scope: "docs", Patterns: []string{`x`},
	})
	testsRule := mustCompileRule(t, patternSpec{
		ID: "r3", Severity: "low", Scope: "tests", Patterns: []string{`x`},
	})

	if !codeRule.AppliesTo("main.go") || codeRule.AppliesTo("README.md") {
		t.Error("code scope should match only code files")
	}
	if !docsRule.AppliesTo("pitch.md") || docsRule.AppliesTo("main.go") {
		t.Error("docs scope should match only documents")
	}
	if !testsRule.AppliesTo("auth_test.go") || testsRule.AppliesTo("auth.go") {
		t.Error("tests scope should match only test files")
	}
}

func TestCompilePatternRule_Validation(t *testing.T) {
	tests := []struct {
		name string
		spec patternSpec
	}{
		{"missing id", patternSpec{Severity: "low", Patterns: []string{`x`}}},
		{"bad severity", patternSpec{ID: "r", Severity: "urgent", Patterns: []string{`x`}}},
		{"no patterns", patternSpec{ID: "r", Severity: "low"}},
		{"bad regexp", patternSpec{ID: "r", Severity: "low", Patterns: []string{`(`}}},
		{"bad scope", patternSpec{ID: "r", Severity: "low", Scope: "binary", Patterns: []string{`x`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := compilePatternRule(tt.spec, domain.SourceRules); err == nil {
				t.Errorf("expected compile error for %s", tt.name)
			}
		})
	}
}

func TestFileClassification(t *testing.T) {
	if !IsCodeFile("api/server.py") || IsCodeFile("notes.md") {
		t.Error("IsCodeFile misclassified")
	}
	if !IsDocFile("docs/pitch.md") || IsDocFile("server.py") {
		t.Error("IsDocFile misclassified")
	}
	if !IsTestFile("auth_test.go") || !IsTestFile("login.spec.ts") || IsTestFile("auth.go") {
		t.Error("IsTestFile misclassified")
	}
}
