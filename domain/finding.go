package domain

import "time"

// Severity classifies how urgent a finding is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank returns a numeric rank for ordering (higher = more severe).
// Unknown severities rank below info so malformed input sorts last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold reports whether the severity is at or above the threshold
func (s Severity) MeetsThreshold(threshold Severity) bool {
	if threshold == "" {
		return false
	}
	return s.Rank() >= threshold.Rank()
}

// ParseSeverity validates a severity string
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return Severity(s), true
	}
	return "", false
}

// Finding source identifiers for the built-in analysis sources. External
// adapters report under their own tool name.
const (
	SourcePattern = "pattern"
	SourceRules   = "rules"
)

// SourcePrecedence ranks finding sources for duplicate resolution.
// Dedicated external tools have lower false-positive rates than the built-in
// pattern matcher, which in turn beats the declarative rule engine.
func SourcePrecedence(source string) int {
	switch source {
	case SourceRules:
		return 1
	case SourcePattern:
		return 2
	default:
		return 3
	}
}

// ReviewUnit is the immutable input to one review: a file path plus its
// content. Owned by the caller and never mutated by the engine.
type ReviewUnit struct {
	Path         string `json:"path"`
	Content      []byte `json:"-"`
	LanguageHint string `json:"language_hint,omitempty"`
}

// Finding is a single reported issue with severity, location, and message
type Finding struct {
	Severity   Severity `json:"severity"`
	RuleID     string   `json:"rule_id"`
	Source     string   `json:"source"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Column     int      `json:"column,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ScanResult is the output of one scanner adapter. It is always produced:
// adapter crashes and timeouts are recorded in Error instead of failing the
// review.
type ScanResult struct {
	Source     string    `json:"source"`
	Findings   []Finding `json:"findings"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Summary holds finding counts per severity
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Add increments the counter for the given severity
func (s *Summary) Add(sev Severity) {
	switch sev {
	case SeverityCritical:
		s.Critical++
	case SeverityHigh:
		s.High++
	case SeverityMedium:
		s.Medium++
	case SeverityLow:
		s.Low++
	case SeverityInfo:
		s.Info++
	}
}

// Total returns the total number of counted findings
func (s Summary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Info
}

// HighestSeverity returns the most severe level with a non-zero count
func (s Summary) HighestSeverity() Severity {
	switch {
	case s.Critical > 0:
		return SeverityCritical
	case s.High > 0:
		return SeverityHigh
	case s.Medium > 0:
		return SeverityMedium
	case s.Low > 0:
		return SeverityLow
	case s.Info > 0:
		return SeverityInfo
	}
	return ""
}

// ReviewResult is the merged outcome of one review. Findings are
// deduplicated and sorted by (severity desc, file asc, line asc, rule id asc);
// this ordering is stable and reproducible for identical inputs.
type ReviewResult struct {
	Unit        ReviewUnit `json:"unit"`
	Findings    []Finding  `json:"findings"`
	Summary     Summary    `json:"summary"`
	Notes       []string   `json:"notes,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
	DurationMs  int64      `json:"duration_ms"`
}
