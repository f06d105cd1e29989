package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/constants"
	"github.com/ludo-technologies/revu/internal/rules"
)

// ControllerOptions configures the scanner controller
type ControllerOptions struct {
	// AdapterTimeout bounds one adapter invocation
	AdapterTimeout time.Duration

	// ReviewTimeout bounds the whole review call, even when several
	// adapters are slow back to back
	ReviewTimeout time.Duration

	// MaxAdapterProcs caps concurrent adapter executions per review
	MaxAdapterProcs int

	// CacheTTL is the TTL applied to cached review results
	CacheTTL time.Duration
}

func (o *ControllerOptions) applyDefaults() {
	if o.AdapterTimeout <= 0 {
		o.AdapterTimeout = constants.DefaultAdapterTimeout
	}
	if o.ReviewTimeout <= 0 {
		o.ReviewTimeout = constants.DefaultReviewTimeout
	}
	if o.MaxAdapterProcs <= 0 {
		o.MaxAdapterProcs = 4
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = constants.DefaultCacheTTL
	}
}

// ScannerController orchestrates one review: it resolves applicable rules,
// consults the cache, fans out to the active adapters concurrently, and
// aggregates their findings. Adapter failures degrade coverage; they never
// fail the review.
type ScannerController struct {
	engine     *rules.Engine
	adapters   []domain.ScannerAdapter
	aggregator *ResultAggregator
	cache      domain.ReviewCache
	logger     *zap.Logger
	opts       ControllerOptions
}

// NewScannerController wires a controller. The cache is injected so tests
// can substitute a no-op or deterministic cache.
func NewScannerController(
	engine *rules.Engine,
	adapters []domain.ScannerAdapter,
	cache domain.ReviewCache,
	logger *zap.Logger,
	opts ControllerOptions,
) *ScannerController {
	opts.applyDefaults()
	if cache == nil {
		cache = NoOpCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScannerController{
		engine:     engine,
		adapters:   adapters,
		aggregator: NewResultAggregator(),
		cache:      cache,
		logger:     logger,
		opts:       opts,
	}
}

// Review analyzes one unit against the compiled standards and returns the
// merged, deterministically ordered result.
func (c *ScannerController) Review(ctx context.Context, unit domain.ReviewUnit, standards []domain.Standard) (*domain.ReviewResult, error) {
	start := time.Now()

	applicable := c.engine.RulesFor(unit.Path, standards)
	ruleIDs := make([]string, 0, len(applicable))
	for _, r := range applicable {
		ruleIDs = append(ruleIDs, r.ID())
	}

	key := CacheKey(unit.Content, ruleIDs)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	// Outer deadline: the review returns within a bounded time even when
	// every adapter is slow.
	ctx, cancel := context.WithTimeout(ctx, c.opts.ReviewTimeout)
	defer cancel()

	active, notes := c.probeAdapters(ctx)
	results := c.runAdapters(ctx, active, unit)

	for _, res := range results {
		if res.Error != "" {
			c.logger.Warn("adapter degraded",
				zap.String("adapter", res.Source),
				zap.String("file", unit.Path),
				zap.String("error", res.Error))
			notes = append(notes, fmt.Sprintf("source %s unavailable: %s", res.Source, res.Error))
		}
	}

	ruleFindings := evaluateRules(applicable, unit)

	findings, summary, err := c.aggregator.Aggregate(results, ruleFindings)
	if err != nil {
		c.logger.Error("aggregation failed closed",
			zap.String("file", unit.Path),
			zap.Error(err))
		return nil, err
	}

	result := &domain.ReviewResult{
		Unit:        unit,
		Findings:    findings,
		Summary:     summary,
		Notes:       notes,
		GeneratedAt: time.Now().UTC(),
		DurationMs:  time.Since(start).Milliseconds(),
	}
	c.cache.Put(key, result, c.opts.CacheTTL)
	return result, nil
}

// probeAdapters determines the active adapter set. A failed probe records an
// info note and drops the adapter; it is degraded capability, not an error.
func (c *ScannerController) probeAdapters(ctx context.Context) ([]domain.ScannerAdapter, []string) {
	var active []domain.ScannerAdapter
	var notes []string
	for _, adapter := range c.adapters {
		probeCtx, cancel := context.WithTimeout(ctx, constants.DefaultProbeTimeout)
		err := adapter.Probe(probeCtx)
		cancel()
		if err != nil {
			notes = append(notes, fmt.Sprintf("source %s unavailable: %v", adapter.Name(), err))
			continue
		}
		active = append(active, adapter)
	}
	return active, notes
}

// runAdapters fans out to all active adapters concurrently. Each invocation
// gets its own timeout; a crash or expiry yields a ScanResult with Error set
// and never aborts the siblings.
func (c *ScannerController) runAdapters(ctx context.Context, adapters []domain.ScannerAdapter, unit domain.ReviewUnit) []domain.ScanResult {
	results := make([]domain.ScanResult, len(adapters))

	g := new(errgroup.Group)
	g.SetLimit(c.opts.MaxAdapterProcs)

	for i, adapter := range adapters {
		g.Go(func() error {
			scanCtx, cancel := context.WithTimeout(ctx, c.opts.AdapterTimeout)
			defer cancel()

			results[i] = c.scanSafely(scanCtx, adapter, unit)
			return nil
		})
	}
	// Goroutines always return nil; failures live in the result slots
	_ = g.Wait()

	// Deterministic result order regardless of completion order
	sort.SliceStable(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	return results
}

// scanSafely converts adapter panics into ScanResult errors
func (c *ScannerController) scanSafely(ctx context.Context, adapter domain.ScannerAdapter, unit domain.ReviewUnit) (result domain.ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ScanResult{
				Source: adapter.Name(),
				Error:  fmt.Sprintf("adapter panicked: %v", r),
			}
		}
	}()
	return adapter.Scan(ctx, unit)
}

// evaluateRules runs the applicable standards rules. Rules are pure
// functions, so they run inline on the calling goroutine.
func evaluateRules(applicable []domain.Rule, unit domain.ReviewUnit) []domain.Finding {
	var findings []domain.Finding
	for _, rule := range applicable {
		findings = append(findings, rule.Evaluate(unit)...)
	}
	return findings
}
