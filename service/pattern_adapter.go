package service

import (
	"context"
	"time"

	"github.com/ludo-technologies/revu/domain"
)

// PatternAdapter is the built-in scanner: it evaluates the embedded security
// pattern set against the unit. It is always active; Probe never fails.
type PatternAdapter struct {
	rules []domain.Rule
}

// NewPatternAdapter creates the built-in pattern adapter over the given
// pattern rules (normally rules.BuiltinPatternRules()).
func NewPatternAdapter(patternRules []domain.Rule) *PatternAdapter {
	return &PatternAdapter{rules: patternRules}
}

func (a *PatternAdapter) Name() string { return domain.SourcePattern }

func (a *PatternAdapter) Probe(context.Context) error { return nil }

// Scan evaluates every applicable pattern rule. The rules are pure, so the
// only cancellation point is between rules.
func (a *PatternAdapter) Scan(ctx context.Context, unit domain.ReviewUnit) domain.ScanResult {
	start := time.Now()
	result := domain.ScanResult{Source: a.Name()}

	for _, rule := range a.rules {
		if err := ctx.Err(); err != nil {
			result.Error = err.Error()
			break
		}
		if !rule.AppliesTo(unit.Path) {
			continue
		}
		result.Findings = append(result.Findings, rule.Evaluate(unit)...)
	}

	result.DurationMs = time.Since(start).Milliseconds()
	return result
}
