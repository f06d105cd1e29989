package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/revu/domain"
)

// ReportWriter renders reports in the supported output formats
type ReportWriter struct{}

// NewReportWriter creates a report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write renders a single-file report in the given format
func (w *ReportWriter) Write(report *domain.Report, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, report)
	case domain.OutputFormatText:
		return w.writeText(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteProject renders a project report in the given format
func (w *ReportWriter) WriteProject(report *domain.ProjectReport, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, report)
	case domain.OutputFormatText:
		return w.writeProjectText(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var severityOrder = []domain.Severity{
	domain.SeverityCritical,
	domain.SeverityHigh,
	domain.SeverityMedium,
	domain.SeverityLow,
	domain.SeverityInfo,
}

func severityLabel(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "[!!!] CRITICAL"
	case domain.SeverityHigh:
		return "[!!] HIGH"
	case domain.SeverityMedium:
		return "[!] MEDIUM"
	case domain.SeverityLow:
		return "[-] LOW"
	default:
		return "[i] INFO"
	}
}

// writeText renders the human-facing view: findings grouped by severity,
// guidance blocks when present.
func (w *ReportWriter) writeText(report *domain.Report, writer io.Writer) error {
	ew := &errWriter{w: writer}

	ew.printf("\n=== Review: %s ===\n\n", report.Path)
	total := report.Summary.Total()
	ew.printf("Findings: %d total", total)
	if total > 0 {
		ew.printf(" (%d critical, %d high, %d medium, %d low, %d info)",
			report.Summary.Critical, report.Summary.High,
			report.Summary.Medium, report.Summary.Low, report.Summary.Info)
	}
	ew.printf("\n%s\n", strings.Repeat("-", 60))

	if total == 0 {
		ew.printf("\nNo issues found.\n")
	}

	// Findings arrive sorted; a single pass per severity keeps grouping
	// without re-sorting.
	for _, sev := range severityOrder {
		first := true
		for _, f := range report.Findings {
			if f.Severity != sev {
				continue
			}
			if first {
				ew.printf("\n%s\n", severityLabel(sev))
				first = false
			}
			w.writeFinding(ew, f)
		}
	}

	if len(report.Notes) > 0 {
		ew.printf("\nNotes:\n")
		for _, note := range report.Notes {
			ew.printf("  - %s\n", note)
		}
	}
	ew.printf("\nCompleted in %dms\n", report.DurationMs)
	return ew.err
}

func (w *ReportWriter) writeFinding(ew *errWriter, f domain.ReportFinding) {
	loc := fmt.Sprintf("%s:%d", f.File, f.Line)
	if f.Column > 0 {
		loc = fmt.Sprintf("%s:%d", loc, f.Column)
	}
	ew.printf("\n  %s  %s [%s]\n", loc, f.RuleID, f.Source)
	ew.printf("    %s\n", f.Message)
	if f.Guidance != nil {
		w.writeGuidance(ew, f.Guidance)
	} else if f.Suggestion != "" {
		ew.printf("    Suggestion: %s\n", f.Suggestion)
	}
}

func (w *ReportWriter) writeGuidance(ew *errWriter, g *domain.Guidance) {
	if g.Why != "" {
		ew.printf("    Why it matters:\n")
		for _, line := range wrapText(strings.TrimSpace(g.Why), 66) {
			ew.printf("      %s\n", line)
		}
	}
	if g.BadExample != "" {
		ew.printf("    Avoid:\n")
		writeIndentedBlock(ew, g.BadExample)
	}
	if g.GoodExample != "" {
		ew.printf("    Prefer:\n")
		writeIndentedBlock(ew, g.GoodExample)
	}
	if len(g.Steps) > 0 {
		ew.printf("    Steps:\n")
		for i, step := range g.Steps {
			ew.printf("      %d. %s\n", i+1, step)
		}
	}
	if len(g.ReflectionQuestions) > 0 {
		ew.printf("    Consider:\n")
		for _, q := range g.ReflectionQuestions {
			ew.printf("      - %s\n", q)
		}
	}
}

func writeIndentedBlock(ew *errWriter, block string) {
	for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
		ew.printf("      %s\n", line)
	}
}

func (w *ReportWriter) writeProjectText(report *domain.ProjectReport, writer io.Writer) error {
	ew := &errWriter{w: writer}

	ew.printf("\n=== Project Review: %s ===\n\n", report.Root)
	ew.printf("Files reviewed: %d", report.FilesTotal)
	if report.FilesFailed > 0 {
		ew.printf(" (%d failed)", report.FilesFailed)
	}
	ew.printf("\nFindings: %d total (%d critical, %d high, %d medium, %d low, %d info)\n",
		report.Summary.Total(),
		report.Summary.Critical, report.Summary.High,
		report.Summary.Medium, report.Summary.Low, report.Summary.Info)
	ew.printf("%s\n", strings.Repeat("-", 60))

	if ew.err != nil {
		return ew.err
	}
	for _, fileReport := range report.Reports {
		if fileReport.Summary.Total() == 0 {
			continue
		}
		if err := w.writeText(fileReport, writer); err != nil {
			return err
		}
	}

	if len(report.Notes) > 0 {
		ew.printf("\nProject notes:\n")
		for _, note := range report.Notes {
			ew.printf("  - %s\n", note)
		}
	}
	ew.printf("\nCompleted in %dms\n", report.DurationMs)
	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// wrapText wraps prose at the given width
func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
