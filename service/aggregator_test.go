package service

import (
	"reflect"
	"testing"

	"github.com/ludo-technologies/revu/domain"
)

func TestAggregate_MergesAllSources(t *testing.T) {
	agg := NewResultAggregator()

	results := []domain.ScanResult{
		{Source: domain.SourcePattern, Findings: []domain.Finding{
			{Severity: domain.SeverityHigh, RuleID: "hardcoded-secret", Source: domain.SourcePattern, File: "a.go", Line: 3, Message: "Possible hardcoded credential or API key"},
		}},
		{Source: "semgrep", Findings: []domain.Finding{
			{Severity: domain.SeverityMedium, RuleID: "go.lang.weak-hash", Source: "semgrep", File: "a.go", Line: 40, Message: "weak hash algorithm detected in checksum helper"},
		}},
	}
	ruleFindings := []domain.Finding{
		{Severity: domain.SeverityLow, RuleID: "A09", Source: domain.SourceRules, File: "a.go", Line: 12, Message: "Security logging failure: error silently swallowed"},
	}

	findings, summary, err := agg.Aggregate(results, ruleFindings)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("expected 3 distinct findings, got %d", len(findings))
	}
	if summary.High != 1 || summary.Medium != 1 || summary.Low != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestAggregate_CollapsesInjectionDuplicates(t *testing.T) {
	agg := NewResultAggregator()

	// The pattern adapter and the owasp-web standard both fire on the same
	// concatenated shell command; only one finding may survive.
	pattern := domain.Finding{
		Severity: domain.SeverityCritical,
		RuleID:   "command-injection",
		Source:   domain.SourcePattern,
		File:     "run.js",
		Line:     14,
		Column:   5,
		Message:  "Shell command built from string concatenation; user-controlled input can inject arbitrary commands",
	}
	rules := domain.Finding{
		Severity: domain.SeverityCritical,
		RuleID:   "A03",
		Source:   domain.SourceRules,
		File:     "run.js",
		Line:     14,
		Column:   5,
		Message:  "Injection: command or SQL statement built from string concatenation of untrusted input",
	}

	findings, summary, err := agg.Aggregate(
		[]domain.ScanResult{{Source: domain.SourcePattern, Findings: []domain.Finding{pattern}}},
		[]domain.Finding{rules},
	)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected duplicates to collapse to 1 finding, got %d", len(findings))
	}
	// Equal severity: the pattern source outranks the rules source
	if findings[0].Source != domain.SourcePattern {
		t.Errorf("survivor source = %s, want pattern", findings[0].Source)
	}
	if summary.Critical != 1 || summary.Total() != 1 {
		t.Errorf("summary must count the survivor once: %+v", summary)
	}
}

func TestAggregate_HigherSeveritySurvives(t *testing.T) {
	agg := NewResultAggregator()

	low := domain.Finding{
		Severity: domain.SeverityMedium, RuleID: "x-hash", Source: "semgrep",
		File: "crypto.go", Line: 8, Message: "weak hash algorithm md5 detected here",
	}
	high := domain.Finding{
		Severity: domain.SeverityHigh, RuleID: "weak-hash", Source: domain.SourcePattern,
		File: "crypto.go", Line: 9, Message: "weak hash algorithm md5 detected nearby",
	}

	findings, _, err := agg.Aggregate(nil, []domain.Finding{low, high})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected neighboring similar findings to collapse, got %d", len(findings))
	}
	if findings[0].Severity != domain.SeverityHigh {
		t.Errorf("survivor severity = %s, want high", findings[0].Severity)
	}
}

func TestAggregate_LineToleranceBoundary(t *testing.T) {
	agg := NewResultAggregator()

	base := domain.Finding{
		Severity: domain.SeverityMedium, RuleID: "weak-hash", Source: domain.SourcePattern,
		File: "crypto.go", Line: 10, Message: "weak hash algorithm detected",
	}
	farAway := base
	farAway.Line = 13
	farAway.Source = domain.SourceRules

	findings, _, err := agg.Aggregate(nil, []domain.Finding{base, farAway})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(findings) != 2 {
		t.Errorf("findings more than one line apart must not dedup, got %d", len(findings))
	}
}

func TestAggregate_DissimilarMessagesKept(t *testing.T) {
	agg := NewResultAggregator()

	a := domain.Finding{
		Severity: domain.SeverityMedium, RuleID: "A05", Source: domain.SourceRules,
		File: "app.py", Line: 5, Message: "Security misconfiguration: debug mode or verbose errors enabled",
	}
	b := domain.Finding{
		Severity: domain.SeverityMedium, RuleID: "A01", Source: domain.SourceRules,
		File: "app.py", Line: 5, Column: 30, Message: "Broken access control: overly permissive permission or CORS policy",
	}

	findings, _, err := agg.Aggregate(nil, []domain.Finding{a, b})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(findings) != 2 {
		t.Errorf("distinct findings on the same line must both survive, got %d", len(findings))
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	agg := NewResultAggregator()

	findings := []domain.Finding{
		{Severity: domain.SeverityCritical, RuleID: "command-injection", Source: domain.SourcePattern, File: "b.go", Line: 7, Message: "Shell command built from string concatenation"},
		{Severity: domain.SeverityCritical, RuleID: "A03", Source: domain.SourceRules, File: "b.go", Line: 7, Message: "untrusted input concatenated into a shell command string"},
		{Severity: domain.SeverityHigh, RuleID: "hardcoded-secret", Source: domain.SourcePattern, File: "a.go", Line: 2, Message: "Possible hardcoded credential or API key"},
		{Severity: domain.SeverityInfo, RuleID: "debug-statement", Source: domain.SourcePattern, File: "a.go", Line: 9, Message: "Leftover debugging statement"},
	}
	reversed := make([]domain.Finding, len(findings))
	for i, f := range findings {
		reversed[len(findings)-1-i] = f
	}

	got1, sum1, err1 := agg.Aggregate(nil, findings)
	got2, sum2, err2 := agg.Aggregate(nil, reversed)
	if err1 != nil || err2 != nil {
		t.Fatalf("Aggregate failed: %v / %v", err1, err2)
	}

	if !reflect.DeepEqual(got1, got2) {
		t.Errorf("aggregation must be independent of input order:\n%v\nvs\n%v", got1, got2)
	}
	if sum1 != sum2 {
		t.Errorf("summaries differ: %+v vs %+v", sum1, sum2)
	}
}

func TestAggregate_CanonicalOrdering(t *testing.T) {
	agg := NewResultAggregator()

	findings := []domain.Finding{
		{Severity: domain.SeverityInfo, RuleID: "debug-statement", Source: domain.SourcePattern, File: "z.go", Line: 1, Message: "Leftover debugging statement"},
		{Severity: domain.SeverityCritical, RuleID: "sql-injection", Source: domain.SourcePattern, File: "db.go", Line: 22, Message: "SQL statement built from string concatenation"},
		{Severity: domain.SeverityCritical, RuleID: "command-injection", Source: domain.SourcePattern, File: "a.go", Line: 5, Message: "Shell command built from string concatenation"},
	}

	got, _, err := agg.Aggregate(nil, findings)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(got))
	}
	if got[0].File != "a.go" || got[1].File != "db.go" {
		t.Errorf("critical findings should sort before info, files ascending: %v", got)
	}
	if got[2].Severity != domain.SeverityInfo {
		t.Errorf("info finding should sort last, got %s", got[2].Severity)
	}
}

func TestTokenOverlap(t *testing.T) {
	if got := tokenOverlap("weak hash algorithm md5", "weak hash algorithm sha1"); got < 0.6 {
		t.Errorf("mostly shared tokens should overlap >= 0.6, got %f", got)
	}
	if got := tokenOverlap("debug mode enabled", "permissive cors policy origin"); got >= 0.6 {
		t.Errorf("unrelated messages should not overlap, got %f", got)
	}
	if got := tokenOverlap("", "anything"); got != 0 {
		t.Errorf("empty message overlap should be 0, got %f", got)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	agg := NewResultAggregator()

	findings, summary, err := agg.Aggregate(nil, nil)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(findings) != 0 || summary.Total() != 0 {
		t.Errorf("empty input should produce an empty result, got %v %+v", findings, summary)
	}
}
