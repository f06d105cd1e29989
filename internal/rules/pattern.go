package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ludo-technologies/revu/domain"
)

// ruleScope restricts which file class a declarative rule runs against
type ruleScope string

const (
	scopeAny   ruleScope = "any"
	scopeCode  ruleScope = "code"
	scopeDocs  ruleScope = "docs"
	scopeTests ruleScope = "tests"
)

var codeExtensions = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true, ".py": true, ".rb": true, ".java": true,
	".php": true, ".c": true, ".h": true, ".cpp": true, ".cc": true,
	".cs": true, ".rs": true, ".sh": true, ".bash": true, ".sql": true,
	".kt": true, ".swift": true, ".scala": true,
}

var docExtensions = map[string]bool{
	".md": true, ".markdown": true, ".rst": true, ".txt": true, ".adoc": true,
}

// IsCodeFile reports whether the path looks like a source code file
func IsCodeFile(path string) bool {
	return codeExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsDocFile reports whether the path looks like a process or documentation file
func IsDocFile(path string) bool {
	return docExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsTestFile reports whether the path looks like a test file
func IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, "_test.go") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasPrefix(base, "test_")
}

func (s ruleScope) matches(path string) bool {
	switch s {
	case scopeCode:
		return IsCodeFile(path)
	case scopeDocs:
		return IsDocFile(path)
	case scopeTests:
		return IsTestFile(path)
	default:
		return true
	}
}

// patternSpec is the YAML shape of one declarative rule
type patternSpec struct {
	ID         string   `yaml:"id"`
	Severity   string   `yaml:"severity"`
	Scope      string   `yaml:"scope"`
	Files      []string `yaml:"files"`
	Message    string   `yaml:"message"`
	Suggestion string   `yaml:"suggestion"`
	Patterns   []string `yaml:"patterns"`
}

// PatternRule is a declarative rule compiled from a rule pack: a set of
// regular expressions matched line by line against the unit content.
type PatternRule struct {
	id         string
	severity   domain.Severity
	scope      ruleScope
	globs      []string
	message    string
	suggestion string
	source     string
	patterns   []*regexp.Regexp
}

func compilePatternRule(spec patternSpec, source string) (*PatternRule, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("rule without id")
	}
	sev, ok := domain.ParseSeverity(spec.Severity)
	if !ok {
		return nil, fmt.Errorf("rule %s: invalid severity %q", spec.ID, spec.Severity)
	}
	if len(spec.Patterns) == 0 {
		return nil, fmt.Errorf("rule %s: no patterns", spec.ID)
	}

	scope := ruleScope(spec.Scope)
	if scope == "" {
		scope = scopeAny
	}
	switch scope {
	case scopeAny, scopeCode, scopeDocs, scopeTests:
	default:
		return nil, fmt.Errorf("rule %s: invalid scope %q", spec.ID, spec.Scope)
	}

	rule := &PatternRule{
		id:         spec.ID,
		severity:   sev,
		scope:      scope,
		globs:      spec.Files,
		message:    spec.Message,
		suggestion: spec.Suggestion,
		source:     source,
	}
	for _, p := range spec.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("rule %s: bad pattern %q: %w", spec.ID, p, err)
		}
		rule.patterns = append(rule.patterns, re)
	}
	return rule, nil
}

func (r *PatternRule) ID() string { return r.id }

func (r *PatternRule) DefaultSeverity() domain.Severity { return r.severity }

func (r *PatternRule) AppliesTo(path string) bool {
	if !r.scope.matches(path) {
		return false
	}
	if len(r.globs) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, g := range r.globs {
		if ok, _ := filepath.Match(g, base); ok {
			return true
		}
	}
	return false
}

// Evaluate matches the rule patterns against each line of the unit. One
// finding is emitted per line at most, at the column of the first match.
func (r *PatternRule) Evaluate(unit domain.ReviewUnit) []domain.Finding {
	var findings []domain.Finding
	lines := strings.Split(string(unit.Content), "\n")
	for i, line := range lines {
		for _, re := range r.patterns {
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			findings = append(findings, domain.Finding{
				Severity:   r.severity,
				RuleID:     r.id,
				Source:     r.source,
				File:       unit.Path,
				Line:       i + 1,
				Column:     loc[0] + 1,
				Message:    r.message,
				Suggestion: r.suggestion,
			})
			break
		}
	}
	return findings
}
