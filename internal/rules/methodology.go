package rules

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/revu/domain"
)

// Methodology standards need structural checks that a line pattern cannot
// express, so their rules are registered as functions behind the same Rule
// interface as the declarative packs.

var appetiteValueRe = regexp.MustCompile(`(?i)\b(?:one|two|three|four|five|six|\d+)\s*(?:-\s*)?weeks?\b`)

func methodologyStandards() []domain.Standard {
	return []domain.Standard{
		{
			ID:   "shape-up",
			Name: "Shape Up pitch conventions",
			Kind: domain.StandardKindMethodology,
			Rules: []domain.Rule{
				domain.RuleFunc{
					RuleID:   "shape-up/appetite",
					Severity: domain.SeverityMedium,
					Applies:  looksLikePitchPath,
					Run:      checkAppetite,
				},
				domain.RuleFunc{
					RuleID:   "shape-up/rabbit-holes",
					Severity: domain.SeverityLow,
					Applies:  looksLikePitchPath,
					Run:      checkRabbitHoles,
				},
				domain.RuleFunc{
					RuleID:   "shape-up/solution",
					Severity: domain.SeverityMedium,
					Applies:  looksLikePitchPath,
					Run:      checkSolution,
				},
			},
		},
		{
			ID:   "scrum",
			Name: "Scrum user story conventions",
			Kind: domain.StandardKindMethodology,
			Rules: []domain.Rule{
				domain.RuleFunc{
					RuleID:   "scrum/acceptance-criteria",
					Severity: domain.SeverityMedium,
					Applies:  looksLikeStoryPath,
					Run:      checkAcceptanceCriteria,
				},
				domain.RuleFunc{
					RuleID:   "scrum/story-format",
					Severity: domain.SeverityLow,
					Applies:  looksLikeStoryPath,
					Run:      checkStoryFormat,
				},
			},
		},
	}
}

func looksLikePitchPath(path string) bool {
	if !IsDocFile(path) {
		return false
	}
	base := strings.ToLower(path)
	return strings.Contains(base, "pitch")
}

func looksLikeStoryPath(path string) bool {
	if !IsDocFile(path) {
		return false
	}
	base := strings.ToLower(path)
	return strings.Contains(base, "story") || strings.Contains(base, "stories")
}

// sectionLine returns the 1-based line of a markdown heading containing the
// given title, or 0 if absent.
func sectionLine(content, title string) int {
	lower := strings.ToLower(title)
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), lower) {
			return i + 1
		}
	}
	return 0
}

func docFinding(unit domain.ReviewUnit, ruleID string, sev domain.Severity, line int, message, suggestion string) domain.Finding {
	if line == 0 {
		line = 1
	}
	return domain.Finding{
		Severity:   sev,
		RuleID:     ruleID,
		Source:     domain.SourceRules,
		File:       unit.Path,
		Line:       line,
		Message:    message,
		Suggestion: suggestion,
	}
}

func checkAppetite(unit domain.ReviewUnit) []domain.Finding {
	content := string(unit.Content)
	line := sectionLine(content, "appetite")
	if line == 0 {
		return []domain.Finding{docFinding(unit, "shape-up/appetite", domain.SeverityMedium, 0,
			"Pitch has no Appetite section; the time budget is unbounded",
			"Add an '## Appetite' section stating the budget, e.g. 'Two weeks' or 'Six weeks'")}
	}

	// The appetite value must appear in the section body before the next heading.
	lines := strings.Split(content, "\n")
	for i := line; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		if appetiteValueRe.MatchString(trimmed) {
			return nil
		}
	}
	return []domain.Finding{docFinding(unit, "shape-up/appetite", domain.SeverityMedium, line,
		"Appetite section does not state a concrete time budget",
		"State the appetite in weeks so the boundary is explicit")}
}

func checkRabbitHoles(unit domain.ReviewUnit) []domain.Finding {
	if sectionLine(string(unit.Content), "rabbit hole") > 0 {
		return nil
	}
	return []domain.Finding{docFinding(unit, "shape-up/rabbit-holes", domain.SeverityLow, 0,
		"Pitch has no Rabbit Holes section; known risks are undocumented",
		"List the parts of the solution that could blow the appetite")}
}

func checkSolution(unit domain.ReviewUnit) []domain.Finding {
	if sectionLine(string(unit.Content), "solution") > 0 {
		return nil
	}
	return []domain.Finding{docFinding(unit, "shape-up/solution", domain.SeverityMedium, 0,
		"Pitch has no Solution section",
		"Sketch the solution at the right level of abstraction (fat-marker, not wireframes)")}
}

func checkAcceptanceCriteria(unit domain.ReviewUnit) []domain.Finding {
	if sectionLine(string(unit.Content), "acceptance criteria") > 0 {
		return nil
	}
	return []domain.Finding{docFinding(unit, "scrum/acceptance-criteria", domain.SeverityMedium, 0,
		"Story has no Acceptance Criteria section",
		"Add testable acceptance criteria so done is verifiable")}
}

var storyFormatRe = regexp.MustCompile(`(?is)\bas an?\b.*\bi want\b.*\bso that\b`)

func checkStoryFormat(unit domain.ReviewUnit) []domain.Finding {
	if storyFormatRe.Match(unit.Content) {
		return nil
	}
	return []domain.Finding{docFinding(unit, "scrum/story-format", domain.SeverityLow, 0,
		"Story does not follow the 'As a ... I want ... so that ...' format",
		"State the role, the capability, and the benefit explicitly")}
}
