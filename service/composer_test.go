package service

import (
	"testing"
	"time"

	"github.com/ludo-technologies/revu/domain"
)

func reviewResultFixture() *domain.ReviewResult {
	return &domain.ReviewResult{
		Unit: domain.ReviewUnit{Path: "run.js"},
		Findings: []domain.Finding{
			{Severity: domain.SeverityCritical, RuleID: "command-injection", Source: domain.SourcePattern, File: "run.js", Line: 14, Message: "shell injection", Suggestion: "use an argument list"},
			{Severity: domain.SeverityLow, RuleID: "some-unknown-rule", Source: "semgrep", File: "run.js", Line: 3, Message: "minor issue", Suggestion: "tidy up"},
		},
		Summary:     domain.Summary{Critical: 1, Low: 1},
		Notes:       []string{"source semgrep unavailable: not found"},
		GeneratedAt: time.Now().UTC(),
		DurationMs:  42,
	}
}

func TestCompose_BasicReport(t *testing.T) {
	composer := NewFeedbackComposer()

	report := composer.Compose(reviewResultFixture(), domain.ComposeOptions{})
	if report.Tool != "revu" {
		t.Errorf("Tool = %s, want revu", report.Tool)
	}
	if report.RunID == "" {
		t.Error("report should carry a run id")
	}
	if report.Path != "run.js" {
		t.Errorf("Path = %s", report.Path)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	if report.Summary.Total() != 2 {
		t.Errorf("Summary total = %d", report.Summary.Total())
	}
	if len(report.Notes) != 1 {
		t.Errorf("notes should carry over, got %v", report.Notes)
	}
	// Education off: no guidance attached
	for _, f := range report.Findings {
		if f.Guidance != nil {
			t.Errorf("guidance attached without education mode on %s", f.RuleID)
		}
	}
}

func TestCompose_EducationAttachesGuidance(t *testing.T) {
	composer := NewFeedbackComposer()

	report := composer.Compose(reviewResultFixture(), domain.ComposeOptions{IncludeEducation: true})

	var withGuidance, withoutGuidance bool
	for _, f := range report.Findings {
		switch f.RuleID {
		case "command-injection":
			withGuidance = f.Guidance != nil
		case "some-unknown-rule":
			withoutGuidance = f.Guidance == nil
		}
	}
	if !withGuidance {
		t.Error("known rules should gain a guidance block in education mode")
	}
	if !withoutGuidance {
		t.Error("rules without a guidance entry keep just their suggestion")
	}
}

func TestCompose_UniqueRunIDs(t *testing.T) {
	composer := NewFeedbackComposer()

	a := composer.Compose(reviewResultFixture(), domain.ComposeOptions{})
	b := composer.Compose(reviewResultFixture(), domain.ComposeOptions{})
	if a.RunID == b.RunID {
		t.Error("each composed report should get its own run id")
	}
}

func TestComposeProject_SumsSummaries(t *testing.T) {
	composer := NewFeedbackComposer()

	reports := []*domain.Report{
		{Path: "a.go", Summary: domain.Summary{Critical: 1, Low: 2}},
		{Path: "b.go", Summary: domain.Summary{High: 3}},
	}
	project := composer.ComposeProject("/repo", reports, []string{"skipped c.go: unreadable"}, 100)

	if project.Root != "/repo" {
		t.Errorf("Root = %s", project.Root)
	}
	if project.FilesTotal != 2 {
		t.Errorf("FilesTotal = %d, want 2", project.FilesTotal)
	}
	if project.Summary.Critical != 1 || project.Summary.High != 3 || project.Summary.Low != 2 {
		t.Errorf("summary not summed: %+v", project.Summary)
	}
	if len(project.Notes) != 1 {
		t.Errorf("project notes lost: %v", project.Notes)
	}
}
