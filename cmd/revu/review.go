package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludo-technologies/revu/app"
	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/config"
	"github.com/ludo-technologies/revu/internal/execx"
	"github.com/ludo-technologies/revu/internal/rules"
	"github.com/ludo-technologies/revu/service"
)

// ReviewExitError carries the process exit code for the severity gate
type ReviewExitError struct {
	Code    int
	Message string
}

func (e *ReviewExitError) Error() string {
	return e.Message
}

var (
	reviewStandards     []string
	reviewMethodologies []string
	reviewFormat        string
	reviewJSON          bool
	reviewEducation     bool
	reviewNoExternal    bool
	reviewNoCache       bool
	reviewFailOn        string
	reviewOutputPath    string
	reviewConfigPath    string
	reviewVerbose       bool
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [path]",
		Short: "Review a file or project against selected standards",
		Long: `Review a file or a whole project tree against the selected standards
and methodologies. The built-in pattern scanner always runs; external
tools join in when installed.

Exit codes:
  0 - Review completed, severity gate passed
  1 - Findings at or above the --fail-on severity
  2 - Review error (bad config, unknown standard, unreadable path)

Examples:
  revu review main.go
  revu review --standards owasp-web,secure-coding src/
  revu review --methodologies scrum docs/
  revu review --education --format json src/
  revu review --fail-on high src/`,
		Args:          cobra.ExactArgs(1),
		RunE:          runReview,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringSliceVarP(&reviewStandards, "standards", "s", nil,
		"Standards to review against (comma-separated), overrides config")
	cmd.Flags().StringSliceVarP(&reviewMethodologies, "methodologies", "m", nil,
		"Methodologies to review against (comma-separated), overrides config")
	cmd.Flags().StringVarP(&reviewFormat, "format", "f", "",
		"Output format: text, json")
	cmd.Flags().BoolVar(&reviewJSON, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().BoolVar(&reviewEducation, "education", false,
		"Attach educational guidance to findings")
	cmd.Flags().BoolVar(&reviewNoExternal, "no-external", false,
		"Disable external tool adapters")
	cmd.Flags().BoolVar(&reviewNoCache, "no-cache", false,
		"Disable the review cache")
	cmd.Flags().StringVar(&reviewFailOn, "fail-on", "",
		"Exit non-zero when findings meet this severity: critical, high, medium, low, info")
	cmd.Flags().StringVarP(&reviewOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().StringVarP(&reviewConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVarP(&reviewVerbose, "verbose", "v", false,
		"Log adapter activity to stderr")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	target := args[0]

	cfg, err := config.LoadConfig(reviewConfigPath, target)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}
	applyFlagOverrides(cmd, cfg)

	format := domain.OutputFormat(cfg.Output.Format)

	logger := buildLogger(reviewVerbose)
	defer func() { _ = logger.Sync() }()

	engine := rules.NewEngine()
	controller, err := buildController(engine, cfg, logger)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: err.Error()}
	}

	composer := service.NewFeedbackComposer()
	reviewUC := app.NewReviewUseCase(engine, controller, composer, logger)

	out, closeOut, err := openOutput(reviewOutputPath)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: err.Error()}
	}
	defer closeOut()

	info, err := os.Stat(target)
	if err != nil {
		return &ReviewExitError{Code: 2, Message: fmt.Sprintf("cannot stat %s: %v", target, err)}
	}

	writer := service.NewReportWriter()
	ctx := context.Background()

	var summary domain.Summary
	if info.IsDir() {
		summary, err = runProjectReview(ctx, reviewUC, composer, cfg, target, format, writer, out, logger)
	} else {
		summary, err = runFileReview(ctx, reviewUC, cfg, target, format, writer, out)
	}
	if err != nil {
		return &ReviewExitError{Code: 2, Message: err.Error()}
	}

	return checkSeverityGate(cfg.Output.FailOn, summary)
}

func runFileReview(
	ctx context.Context,
	reviewUC *app.ReviewUseCase,
	cfg *config.Config,
	target string,
	format domain.OutputFormat,
	writer *service.ReportWriter,
	out io.Writer,
) (domain.Summary, error) {
	report, err := reviewUC.Execute(ctx, app.ReviewRequest{
		Path:             target,
		StandardIDs:      cfg.StandardIDs(),
		IncludeEducation: cfg.Output.IncludeEducation,
	})
	if err != nil {
		return domain.Summary{}, err
	}
	if err := writer.Write(report, format, out); err != nil {
		return domain.Summary{}, err
	}
	return report.Summary, nil
}

func runProjectReview(
	ctx context.Context,
	reviewUC *app.ReviewUseCase,
	composer *service.FeedbackComposer,
	cfg *config.Config,
	root string,
	format domain.OutputFormat,
	writer *service.ReportWriter,
	out io.Writer,
	logger *zap.Logger,
) (domain.Summary, error) {
	// Progress is auto-disabled for JSON output or non-TTY
	pm := service.NewProgressManager(format != domain.OutputFormatJSON)
	defer pm.Close()

	projectUC := app.NewProjectUseCase(reviewUC, composer, pm, logger)
	report, err := projectUC.Execute(ctx, app.ProjectRequest{
		Root:             root,
		StandardIDs:      cfg.StandardIDs(),
		IncludeEducation: cfg.Output.IncludeEducation,
		MaxWorkers:       cfg.Performance.MaxWorkers,
		Collect: app.CollectOptions{
			Recursive:        cfg.Analysis.Recursive,
			IncludePatterns:  cfg.Analysis.IncludePatterns,
			ExcludePatterns:  cfg.Analysis.ExcludePatterns,
			RespectGitignore: cfg.Analysis.RespectGitignore,
		},
	})
	if err != nil {
		return domain.Summary{}, err
	}
	if err := writer.WriteProject(report, format, out); err != nil {
		return domain.Summary{}, err
	}
	return report.Summary, nil
}

// applyFlagOverrides lets CLI flags win over config file values
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("standards") {
		cfg.Selected = reviewStandards
	}
	if cmd.Flags().Changed("methodologies") {
		cfg.Methodologies = reviewMethodologies
	}
	if reviewJSON || reviewFormat == "json" {
		cfg.Output.Format = string(domain.OutputFormatJSON)
	} else if reviewFormat != "" {
		cfg.Output.Format = reviewFormat
	}
	if reviewEducation {
		cfg.Output.IncludeEducation = true
	}
	if reviewNoExternal {
		cfg.Adapters.IncludeExternal = false
	}
	if reviewNoCache {
		cfg.Cache.Enabled = false
	}
	if cmd.Flags().Changed("fail-on") {
		cfg.Output.FailOn = reviewFailOn
	}
}

// buildController assembles the adapter set, cache and controller from config
func buildController(engine *rules.Engine, cfg *config.Config, logger *zap.Logger) (*service.ScannerController, error) {
	builtin, err := engine.BuiltinPatternRules()
	if err != nil {
		return nil, err
	}

	adapters := []domain.ScannerAdapter{service.NewPatternAdapter(builtin)}
	if cfg.Adapters.IncludeExternal {
		runner := execx.OSRunner{}
		for _, ext := range cfg.Adapters.External {
			adapters = append(adapters, service.NewExternalAdapter(ext.Name, ext.Command, ext.Probe, runner))
		}
	}

	var cache domain.ReviewCache = service.NoOpCache{}
	if cfg.Cache.Enabled {
		mc := service.NewMemoryCache(cfg.Cache.Capacity)
		if cfg.Cache.Dir != "" {
			mc = mc.WithPersistDir(cfg.Cache.Dir)
		}
		cache = mc
	}

	return service.NewScannerController(engine, adapters, cache, logger, service.ControllerOptions{
		AdapterTimeout:  secondsToDuration(cfg.Adapters.TimeoutSeconds),
		ReviewTimeout:   secondsToDuration(cfg.Performance.ReviewTimeoutSeconds),
		MaxAdapterProcs: cfg.Performance.MaxAdapterProcs,
		CacheTTL:        secondsToDuration(cfg.Cache.TTLSeconds),
	}), nil
}

// checkSeverityGate fails the command when findings meet the configured
// severity. An empty gate always passes.
func checkSeverityGate(failOn string, summary domain.Summary) error {
	if failOn == "" {
		return nil
	}
	threshold, ok := domain.ParseSeverity(failOn)
	if !ok {
		return &ReviewExitError{Code: 2, Message: fmt.Sprintf("invalid --fail-on severity: %s", failOn)}
	}
	if summary.Total() == 0 {
		return nil
	}
	if summary.HighestSeverity().MeetsThreshold(threshold) {
		return &ReviewExitError{Code: 1, Message: ""}
	}
	return nil
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

func buildLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{"stderr"}
	logger, err := logCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
