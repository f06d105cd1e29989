package service

import (
	"github.com/google/uuid"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/constants"
	"github.com/ludo-technologies/revu/internal/rules"
	"github.com/ludo-technologies/revu/internal/version"
)

// FeedbackComposer turns a ReviewResult into the report contract. Both the
// structured object and the text rendering derive from the same Report; the
// composer never mutates the ReviewResult.
type FeedbackComposer struct {
	guidance func(ruleID string) *domain.Guidance
}

// NewFeedbackComposer creates a composer backed by the embedded guidance
// table.
func NewFeedbackComposer() *FeedbackComposer {
	return &FeedbackComposer{guidance: rules.Guidance}
}

// Compose builds the report for one review result. With IncludeEducation
// set, findings gain guidance blocks where the guidance table has an entry;
// findings without one keep just their suggestion.
func (c *FeedbackComposer) Compose(result *domain.ReviewResult, opts domain.ComposeOptions) *domain.Report {
	report := &domain.Report{
		Tool:        constants.ToolName,
		Version:     version.GetVersion(),
		RunID:       uuid.NewString(),
		Success:     true,
		Path:        result.Unit.Path,
		Summary:     result.Summary,
		Findings:    make([]domain.ReportFinding, 0, len(result.Findings)),
		Notes:       result.Notes,
		GeneratedAt: result.GeneratedAt,
		DurationMs:  result.DurationMs,
	}

	for _, f := range result.Findings {
		rf := domain.ReportFinding{Finding: f}
		if opts.IncludeEducation {
			rf.Guidance = c.guidance(f.RuleID)
		}
		report.Findings = append(report.Findings, rf)
	}
	return report
}

// ComposeProject builds the aggregate report for a project-wide scan
func (c *FeedbackComposer) ComposeProject(root string, reports []*domain.Report, notes []string, durationMs int64) *domain.ProjectReport {
	project := &domain.ProjectReport{
		Tool:       constants.ToolName,
		Version:    version.GetVersion(),
		RunID:      uuid.NewString(),
		Success:    true,
		Root:       root,
		FilesTotal: len(reports),
		Reports:    reports,
		Notes:      notes,
		DurationMs: durationMs,
	}
	for _, r := range reports {
		project.Summary.Critical += r.Summary.Critical
		project.Summary.High += r.Summary.High
		project.Summary.Medium += r.Summary.Medium
		project.Summary.Low += r.Summary.Low
		project.Summary.Info += r.Summary.Info
		if !r.GeneratedAt.IsZero() && (project.GeneratedAt.IsZero() || r.GeneratedAt.After(project.GeneratedAt)) {
			project.GeneratedAt = r.GeneratedAt
		}
	}
	return project
}
