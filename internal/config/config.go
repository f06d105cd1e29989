package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/constants"
)

// Config is the project-level review configuration
type Config struct {
	// Selected lists the standard identifiers to review against
	Selected []string `json:"selected" mapstructure:"selected" yaml:"selected"`

	// Methodologies lists process methodology identifiers; they resolve
	// through the same registry as standards
	Methodologies []string `json:"methodologies" mapstructure:"methodologies" yaml:"methodologies"`

	// Adapters configures the scanner adapters
	Adapters AdaptersConfig `json:"adapters" mapstructure:"adapters" yaml:"adapters"`

	// Cache configures the review cache
	Cache CacheConfig `json:"cache" mapstructure:"cache" yaml:"cache"`

	// Performance configures concurrency and deadlines
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Output configures report rendering
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Analysis configures project file collection
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`
}

// AdaptersConfig holds scanner adapter configuration
type AdaptersConfig struct {
	// IncludeExternal enables external tool adapters
	IncludeExternal bool `json:"include_external" mapstructure:"include_external" yaml:"include_external"`

	// TimeoutSeconds bounds one adapter invocation
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// External lists external tool adapters
	External []ExternalAdapterConfig `json:"external" mapstructure:"external" yaml:"external"`
}

// ExternalAdapterConfig describes one external scanner binary. The command
// is a template; the {file} placeholder is replaced with the unit path.
type ExternalAdapterConfig struct {
	Name    string   `json:"name" mapstructure:"name" yaml:"name"`
	Command []string `json:"command" mapstructure:"command" yaml:"command"`
	Probe   []string `json:"probe" mapstructure:"probe" yaml:"probe"`
}

// CacheConfig holds review cache configuration
type CacheConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	TTLSeconds int    `json:"ttl_seconds" mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
	Capacity   int    `json:"capacity" mapstructure:"capacity" yaml:"capacity"`
	Dir        string `json:"dir,omitempty" mapstructure:"dir" yaml:"dir"`
}

// PerformanceConfig holds concurrency and deadline configuration
type PerformanceConfig struct {
	// MaxWorkers caps concurrent per-file reviews in a project scan
	MaxWorkers int `json:"max_workers" mapstructure:"max_workers" yaml:"max_workers"`

	// MaxAdapterProcs caps concurrent adapter processes within one review
	MaxAdapterProcs int `json:"max_adapter_procs" mapstructure:"max_adapter_procs" yaml:"max_adapter_procs"`

	// ReviewTimeoutSeconds bounds one whole review call
	ReviewTimeoutSeconds int `json:"review_timeout_seconds" mapstructure:"review_timeout_seconds" yaml:"review_timeout_seconds"`
}

// OutputConfig holds report rendering configuration
type OutputConfig struct {
	// Format specifies the output format: text, json
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// IncludeEducation attaches guidance blocks to findings
	IncludeEducation bool `json:"include_education" mapstructure:"include_education" yaml:"include_education"`

	// FailOn makes the review exit non-zero when findings meet this
	// severity; empty disables the gate
	FailOn string `json:"fail_on,omitempty" mapstructure:"fail_on" yaml:"fail_on"`
}

// AnalysisConfig holds project file collection configuration
type AnalysisConfig struct {
	IncludePatterns  []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns  []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	Recursive        bool     `json:"recursive" mapstructure:"recursive" yaml:"recursive"`
	RespectGitignore bool     `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Selected:      []string{"secure-coding"},
		Methodologies: []string{},
		Adapters: AdaptersConfig{
			IncludeExternal: true,
			TimeoutSeconds:  int(constants.DefaultAdapterTimeout.Seconds()),
			External: []ExternalAdapterConfig{
				{
					Name:    "semgrep",
					Command: []string{"semgrep", "scan", "--json", "--quiet", "{file}"},
					Probe:   []string{"semgrep", "--version"},
				},
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: int(constants.DefaultCacheTTL.Seconds()),
			Capacity:   constants.DefaultCacheCapacity,
		},
		Performance: PerformanceConfig{
			MaxWorkers:           4,
			MaxAdapterProcs:      4,
			ReviewTimeoutSeconds: int(constants.DefaultReviewTimeout.Seconds()),
		},
		Output: OutputConfig{
			Format:           constants.OutputFormatText,
			IncludeEducation: false,
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{},
			ExcludePatterns: []string{
				"node_modules", "vendor", "dist", "build",
				".git", ".cache", "coverage",
				"*.min.js", "*.map",
			},
			Recursive:        true,
			RespectGitignore: true,
		},
	}
}

// LoadConfig loads configuration from the given path, or discovers one
// relative to the target path when configPath is empty. Malformed files and
// unknown keys are configuration errors surfaced here, never at review time.
func LoadConfig(configPath, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// New viper instance per load to avoid shared state between tests
	v := viper.New()
	v.SetConfigFile(configPath)

	config := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		return nil, &domain.ConfigError{Path: configPath, Err: err}
	}
	// UnmarshalExact rejects unknown keys so typos fail at load time
	if err := v.UnmarshalExact(config); err != nil {
		return nil, &domain.ConfigError{Path: configPath, Err: err}
	}
	if err := config.Validate(); err != nil {
		return nil, &domain.ConfigError{Path: configPath, Err: err}
	}
	return config, nil
}

// searchConfigInDirectory searches for configuration files in a directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for a config file from the target directory upward,
// then in the standard user locations.
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		constants.ConfigFileName,
		"revu.config.yaml",
		"revu.config.yml",
		".revu.json",
		".revu.yaml",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}
				if parent := filepath.Dir(dir); parent == dir {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", constants.ToolName), candidates); config != "" {
			return config
		}
	}
	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		constants.OutputFormatText: true,
		constants.OutputFormatJSON: true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format %q, must be one of: text, json", c.Output.Format)
	}

	if c.Output.FailOn != "" {
		if _, ok := domain.ParseSeverity(c.Output.FailOn); !ok {
			return fmt.Errorf("invalid output.fail_on %q, must be one of: critical, high, medium, low, info", c.Output.FailOn)
		}
	}

	if c.Adapters.TimeoutSeconds <= 0 {
		return fmt.Errorf("adapters.timeout_seconds must be > 0, got %d", c.Adapters.TimeoutSeconds)
	}
	if c.Performance.ReviewTimeoutSeconds <= c.Adapters.TimeoutSeconds {
		return fmt.Errorf("performance.review_timeout_seconds (%d) must be > adapters.timeout_seconds (%d)",
			c.Performance.ReviewTimeoutSeconds, c.Adapters.TimeoutSeconds)
	}
	if c.Performance.MaxWorkers < 1 {
		return fmt.Errorf("performance.max_workers must be >= 1, got %d", c.Performance.MaxWorkers)
	}
	if c.Performance.MaxAdapterProcs < 1 {
		return fmt.Errorf("performance.max_adapter_procs must be >= 1, got %d", c.Performance.MaxAdapterProcs)
	}

	if c.Cache.Enabled {
		if c.Cache.Capacity < 1 {
			return fmt.Errorf("cache.capacity must be >= 1, got %d", c.Cache.Capacity)
		}
		if c.Cache.TTLSeconds < 1 {
			return fmt.Errorf("cache.ttl_seconds must be >= 1, got %d", c.Cache.TTLSeconds)
		}
	}

	for i, ext := range c.Adapters.External {
		if ext.Name == "" {
			return fmt.Errorf("adapters.external[%d]: name is required", i)
		}
		if len(ext.Command) == 0 {
			return fmt.Errorf("adapters.external[%d] (%s): command is required", i, ext.Name)
		}
	}

	return nil
}

// StandardIDs returns the combined standard and methodology identifiers in
// configuration order.
func (c *Config) StandardIDs() []string {
	ids := make([]string, 0, len(c.Selected)+len(c.Methodologies))
	ids = append(ids, c.Selected...)
	ids = append(ids, c.Methodologies...)
	return ids
}
