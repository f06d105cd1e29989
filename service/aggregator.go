package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/constants"
)

// ResultAggregator merges adapter and rule-engine findings into one
// deduplicated list with a deterministic order.
type ResultAggregator struct {
	similarityThreshold float64
	lineTolerance       int
}

// NewResultAggregator creates an aggregator with the default duplicate
// detection thresholds.
func NewResultAggregator() *ResultAggregator {
	return &ResultAggregator{
		similarityThreshold: constants.DefaultSimilarityThreshold,
		lineTolerance:       constants.DefaultLineTolerance,
	}
}

// Aggregate merges all scan results plus rule-engine findings, removes
// duplicates, sorts, and computes the severity summary in one pass.
//
// Two findings are duplicates when they are in the same file within the line
// tolerance and their normalized messages overlap above the similarity
// threshold. The survivor is the higher-severity finding; on a tie, the one
// from the higher-precedence source (external tool > pattern > rules).
//
// The returned ordering is a contract: severity descending, then file, line,
// and rule id ascending, stable and reproducible for identical inputs.
func (a *ResultAggregator) Aggregate(results []domain.ScanResult, ruleFindings []domain.Finding) ([]domain.Finding, domain.Summary, error) {
	var all []domain.Finding
	for _, res := range results {
		all = append(all, res.Findings...)
	}
	all = append(all, ruleFindings...)

	merged, err := a.dedup(all)
	if err != nil {
		// Fail closed: report nothing rather than an unverified list
		return nil, domain.Summary{}, err
	}

	sortFindings(merged)

	var summary domain.Summary
	for _, f := range merged {
		summary.Add(f.Severity)
	}
	return merged, summary, nil
}

// dedup collapses duplicate findings, keeping the strongest instance
func (a *ResultAggregator) dedup(findings []domain.Finding) ([]domain.Finding, error) {
	// Pre-sort so the scan below is order-independent: the winner of each
	// duplicate group must not depend on adapter completion order.
	sortFindings(findings)

	kept := make([]domain.Finding, 0, len(findings))
	for _, candidate := range findings {
		replaced := false
		duplicate := false
		for i := range kept {
			if !a.isDuplicate(kept[i], candidate) {
				continue
			}
			duplicate = true
			if strongerThan(candidate, kept[i]) {
				kept[i] = candidate
				replaced = true
			}
			break
		}
		if !duplicate && !replaced {
			kept = append(kept, candidate)
		}
	}

	if len(kept) > len(findings) {
		return nil, fmt.Errorf("%w: dedup grew the finding set (%d -> %d)",
			domain.ErrInternal, len(findings), len(kept))
	}
	return kept, nil
}

// isDuplicate applies the (file, line±tolerance, message similarity) test
func (a *ResultAggregator) isDuplicate(x, y domain.Finding) bool {
	if x.File != y.File {
		return false
	}
	delta := x.Line - y.Line
	if delta < 0 {
		delta = -delta
	}
	if delta > a.lineTolerance {
		return false
	}
	if x.RuleID == y.RuleID && x.Line == y.Line && x.Column == y.Column {
		return true
	}
	return tokenOverlap(x.Message, y.Message) >= a.similarityThreshold
}

// strongerThan decides which of two duplicates survives
func strongerThan(candidate, incumbent domain.Finding) bool {
	if candidate.Severity.Rank() != incumbent.Severity.Rank() {
		return candidate.Severity.Rank() > incumbent.Severity.Rank()
	}
	return domain.SourcePrecedence(candidate.Source) > domain.SourcePrecedence(incumbent.Source)
}

// sortFindings applies the canonical ordering: severity descending, then
// file, line, and rule id ascending. The sort is stable so equal findings
// keep their relative order.
func sortFindings(findings []domain.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

// tokenOverlap computes the overlap ratio between the normalized token sets
// of two messages: |intersection| / |smaller set|.
func tokenOverlap(x, y string) float64 {
	xs := tokenize(x)
	ys := tokenize(y)
	if len(xs) == 0 || len(ys) == 0 {
		return 0
	}
	if len(xs) > len(ys) {
		xs, ys = ys, xs
	}
	matches := 0
	for tok := range xs {
		if ys[tok] {
			matches++
		}
	}
	return float64(matches) / float64(len(xs))
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range nonWordRe.Split(strings.ToLower(s), -1) {
		if len(tok) > 2 {
			tokens[tok] = true
		}
	}
	return tokens
}
