package constants

import "time"

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "revu"

	// ConfigFileName is the default config file name
	ConfigFileName = "revu.config.json"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "REVU"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Review engine defaults
const (
	// DefaultAdapterTimeout bounds a single adapter invocation
	DefaultAdapterTimeout = 30 * time.Second

	// DefaultReviewTimeout bounds one whole review call, even under
	// cascading slow adapters
	DefaultReviewTimeout = 2 * time.Minute

	// DefaultProbeTimeout bounds an external tool presence probe
	DefaultProbeTimeout = 3 * time.Second

	// DefaultSimilarityThreshold is the token-overlap ratio above which
	// two findings on neighboring lines are considered duplicates
	DefaultSimilarityThreshold = 0.6

	// DefaultLineTolerance is the line distance within which findings can
	// be considered duplicates
	DefaultLineTolerance = 1

	// DefaultCacheCapacity bounds the in-process review cache
	DefaultCacheCapacity = 512

	// DefaultCacheTTL is how long cached review results stay valid
	DefaultCacheTTL = 15 * time.Minute
)
