package domain

import (
	"context"
	"time"
)

// ScannerAdapter wraps one analysis source behind a uniform capability
// interface. New sources are added by implementing this interface, never by
// branching on adapter types in the controller.
type ScannerAdapter interface {
	// Name identifies the adapter in ScanResult.Source and capability notes
	Name() string

	// Probe checks whether the underlying source is available. A failed
	// probe deactivates the adapter for the review without failing it.
	Probe(ctx context.Context) error

	// Scan analyzes one review unit. Implementations must honor the
	// context deadline and report failures through ScanResult.Error rather
	// than panicking.
	Scan(ctx context.Context, unit ReviewUnit) ScanResult
}

// ReviewCache stores review results keyed by (content hash, rule-set hash).
// Implementations must be safe for concurrent use; the cache is the only
// shared mutable state in the engine.
type ReviewCache interface {
	Get(key string) (*ReviewResult, bool)
	Put(key string, result *ReviewResult, ttl time.Duration)
}

// OutputFormat selects how reports are rendered
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// ProgressManager manages progress reporting for long-running project scans
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
