package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/execx"
)

// filePlaceholder in a command template is replaced by the unit path
const filePlaceholder = "{file}"

// ExternalAdapter invokes an external scanner binary (semgrep-like) as a
// subprocess. Presence is checked with a probe command; an absent tool
// deactivates the adapter without failing the review. Subprocesses are
// killed when the scan context expires, so no orphaned tool processes
// survive a timeout.
type ExternalAdapter struct {
	name    string
	command []string
	probe   []string
	runner  execx.Runner
}

// NewExternalAdapter creates an adapter for one external tool. The command
// is a template whose {file} placeholder is replaced per scan; probe is the
// presence-check invocation (e.g. ["semgrep", "--version"]).
func NewExternalAdapter(name string, command, probe []string, runner execx.Runner) *ExternalAdapter {
	if runner == nil {
		runner = execx.OSRunner{}
	}
	return &ExternalAdapter{name: name, command: command, probe: probe, runner: runner}
}

func (a *ExternalAdapter) Name() string { return a.name }

// Probe checks the tool is installed and answers its version command
func (a *ExternalAdapter) Probe(ctx context.Context) error {
	if len(a.command) == 0 {
		return errors.New("no command configured")
	}
	if _, err := a.runner.LookPath(a.command[0]); err != nil {
		return fmt.Errorf("%s not found in PATH", a.command[0])
	}
	if len(a.probe) > 0 {
		if _, err := a.runner.Run(ctx, a.probe[0], a.probe[1:]...); err != nil {
			return fmt.Errorf("probe failed: %w", err)
		}
	}
	return nil
}

// Scan materializes the unit content to a temp file and runs the tool on it.
// Running on a copy guarantees the content reviewed is the content received,
// even when the caller passed content that differs from what is on disk.
func (a *ExternalAdapter) Scan(ctx context.Context, unit domain.ReviewUnit) domain.ScanResult {
	start := time.Now()
	result := domain.ScanResult{Source: a.name}

	scanPath, cleanup, err := a.materialize(unit)
	if err != nil {
		result.Error = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}
	defer cleanup()

	args := make([]string, 0, len(a.command)-1)
	for _, arg := range a.command[1:] {
		args = append(args, strings.ReplaceAll(arg, filePlaceholder, scanPath))
	}

	out, err := a.runner.Run(ctx, a.command[0], args...)
	if err != nil {
		// Many scanners exit non-zero when they find issues; only treat
		// the run as failed when there is no parseable output.
		if len(bytes.TrimSpace(out)) == 0 {
			adapterErr := &domain.AdapterError{
				Adapter: a.name,
				Timeout: errors.Is(err, context.DeadlineExceeded),
				Err:     err,
			}
			result.Error = adapterErr.Error()
			result.DurationMs = time.Since(start).Milliseconds()
			return result
		}
	}

	findings, parseErr := parseExternalFindings(out, a.name, unit.Path)
	if parseErr != nil {
		result.Error = fmt.Sprintf("parsing %s output: %v", a.name, parseErr)
	} else {
		result.Findings = findings
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

// materialize returns a path holding exactly unit.Content
func (a *ExternalAdapter) materialize(unit domain.ReviewUnit) (string, func(), error) {
	dir, err := os.MkdirTemp("", "revu-scan-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating scan dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(unit.Path))
	if err := os.WriteFile(path, unit.Content, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("writing scan copy: %w", err)
	}
	return path, func() { os.RemoveAll(dir) }, nil
}

// externalResult covers the common JSON shapes external scanners emit:
// either a bare array of findings or a semgrep-style {"results": [...]}.
type externalResult struct {
	Results []externalFinding `json:"results"`
}

type externalFinding struct {
	CheckID  string `json:"check_id"`
	RuleID   string `json:"rule_id"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Fix      string `json:"fix"`

	// semgrep nests location and message
	Start *struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	} `json:"start"`
	Extra *struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
		Fix      string `json:"fix"`
	} `json:"extra"`
}

func parseExternalFindings(out []byte, source, unitPath string) ([]domain.Finding, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raw []externalFinding
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, err
		}
	} else {
		var wrapped externalResult
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		raw = wrapped.Results
	}

	findings := make([]domain.Finding, 0, len(raw))
	for _, r := range raw {
		f := domain.Finding{
			Source:     source,
			RuleID:     r.CheckID,
			File:       unitPath,
			Line:       r.Line,
			Column:     r.Column,
			Message:    r.Message,
			Suggestion: r.Fix,
			Severity:   mapExternalSeverity(r.Severity),
		}
		if f.RuleID == "" {
			f.RuleID = r.RuleID
		}
		if r.Start != nil {
			f.Line = r.Start.Line
			f.Column = r.Start.Col
		}
		if r.Extra != nil {
			if f.Message == "" {
				f.Message = r.Extra.Message
			}
			if f.Suggestion == "" {
				f.Suggestion = r.Extra.Fix
			}
			if r.Extra.Severity != "" {
				f.Severity = mapExternalSeverity(r.Extra.Severity)
			}
		}
		if f.Line < 1 {
			f.Line = 1
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// mapExternalSeverity translates tool severity vocabularies onto ours
func mapExternalSeverity(s string) domain.Severity {
	switch strings.ToLower(s) {
	case "critical":
		return domain.SeverityCritical
	case "error", "high":
		return domain.SeverityHigh
	case "warning", "medium":
		return domain.SeverityMedium
	case "low":
		return domain.SeverityLow
	case "info", "note":
		return domain.SeverityInfo
	default:
		return domain.SeverityMedium
	}
}
