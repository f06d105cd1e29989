package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ludo-technologies/revu/domain"
)

// stubRunner scripts subprocess execution for adapter tests
type stubRunner struct {
	lookPathErr error
	output      []byte
	runErr      error
	lastName    string
	lastArgs    []string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.lastName = name
	r.lastArgs = args
	return r.output, r.runErr
}

func (r *stubRunner) LookPath(file string) (string, error) {
	if r.lookPathErr != nil {
		return "", r.lookPathErr
	}
	return "/usr/bin/" + file, nil
}

func semgrepCommand() []string {
	return []string{"semgrep", "scan", "--json", "--quiet", "{file}"}
}

func TestExternalAdapter_ProbeFailsWhenToolAbsent(t *testing.T) {
	runner := &stubRunner{lookPathErr: errors.New("not found")}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), []string{"semgrep", "--version"}, runner)

	if err := adapter.Probe(context.Background()); err == nil {
		t.Error("probe should fail when the binary is missing")
	}
}

func TestExternalAdapter_ProbeRunsVersionCommand(t *testing.T) {
	runner := &stubRunner{output: []byte("1.50.0\n")}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), []string{"semgrep", "--version"}, runner)

	if err := adapter.Probe(context.Background()); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if runner.lastName != "semgrep" || len(runner.lastArgs) != 1 || runner.lastArgs[0] != "--version" {
		t.Errorf("unexpected probe invocation: %s %v", runner.lastName, runner.lastArgs)
	}
}

func TestExternalAdapter_ScanSubstitutesFilePlaceholder(t *testing.T) {
	runner := &stubRunner{output: []byte(`{"results": []}`)}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), nil, runner)

	unit := domain.ReviewUnit{Path: "src/handler.py", Content: []byte("print('hi')\n")}
	result := adapter.Scan(context.Background(), unit)
	if result.Error != "" {
		t.Fatalf("scan failed: %s", result.Error)
	}

	substituted := false
	for _, arg := range runner.lastArgs {
		if strings.Contains(arg, "{file}") {
			t.Errorf("placeholder not substituted: %v", runner.lastArgs)
		}
		if strings.HasSuffix(arg, "handler.py") {
			substituted = true
		}
	}
	if !substituted {
		t.Errorf("expected the scan copy path in the arguments, got %v", runner.lastArgs)
	}
}

func TestExternalAdapter_ParsesSemgrepOutput(t *testing.T) {
	out := `{
		"results": [
			{
				"check_id": "python.lang.security.dangerous-system-call",
				"path": "/tmp/x/handler.py",
				"start": {"line": 12, "col": 5},
				"extra": {
					"message": "Found dynamic content in os.system call",
					"severity": "ERROR",
					"fix": "use subprocess with an argument list"
				}
			}
		]
	}`
	runner := &stubRunner{output: []byte(out)}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), nil, runner)

	unit := domain.ReviewUnit{Path: "src/handler.py", Content: []byte("import os\n")}
	result := adapter.Scan(context.Background(), unit)
	if result.Error != "" {
		t.Fatalf("scan failed: %s", result.Error)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}

	f := result.Findings[0]
	if f.RuleID != "python.lang.security.dangerous-system-call" {
		t.Errorf("RuleID = %s", f.RuleID)
	}
	if f.Line != 12 || f.Column != 5 {
		t.Errorf("location = %d:%d, want 12:5", f.Line, f.Column)
	}
	if f.Severity != domain.SeverityHigh {
		t.Errorf("Severity = %s, want high (mapped from ERROR)", f.Severity)
	}
	// Findings are attributed to the unit path, not the temp scan copy
	if f.File != "src/handler.py" {
		t.Errorf("File = %s, want the unit path", f.File)
	}
	if f.Source != "semgrep" {
		t.Errorf("Source = %s, want semgrep", f.Source)
	}
}

func TestExternalAdapter_ParsesBareArrayOutput(t *testing.T) {
	out := `[
		{"rule_id": "G101", "line": 3, "column": 1, "message": "hardcoded credentials", "severity": "high"}
	]`
	runner := &stubRunner{output: []byte(out)}
	adapter := NewExternalAdapter("gosec", []string{"gosec", "-fmt=json", "{file}"}, nil, runner)

	unit := domain.ReviewUnit{Path: "main.go", Content: []byte("package main\n")}
	result := adapter.Scan(context.Background(), unit)
	if result.Error != "" {
		t.Fatalf("scan failed: %s", result.Error)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}
	if result.Findings[0].RuleID != "G101" || result.Findings[0].Severity != domain.SeverityHigh {
		t.Errorf("unexpected finding: %+v", result.Findings[0])
	}
}

func TestExternalAdapter_NonZeroExitWithOutputIsNotAFailure(t *testing.T) {
	// semgrep exits 1 when it finds issues; output still parses
	runner := &stubRunner{
		output: []byte(`{"results": [{"check_id": "r", "start": {"line": 1, "col": 1}, "extra": {"message": "m", "severity": "WARNING"}}]}`),
		runErr: errors.New("exit status 1"),
	}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), nil, runner)

	result := adapter.Scan(context.Background(), domain.ReviewUnit{Path: "a.py", Content: []byte("x\n")})
	if result.Error != "" {
		t.Fatalf("non-zero exit with parseable output must not fail: %s", result.Error)
	}
	if len(result.Findings) != 1 {
		t.Errorf("expected the reported finding, got %d", len(result.Findings))
	}
}

func TestExternalAdapter_FailureWithoutOutput(t *testing.T) {
	runner := &stubRunner{runErr: errors.New("exit status 127")}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), nil, runner)

	result := adapter.Scan(context.Background(), domain.ReviewUnit{Path: "a.py", Content: []byte("x\n")})
	if result.Error == "" {
		t.Error("a failed run with no output should set the result error")
	}
	if len(result.Findings) != 0 {
		t.Errorf("failed scans must not fabricate findings, got %d", len(result.Findings))
	}
}

func TestExternalAdapter_MalformedOutput(t *testing.T) {
	runner := &stubRunner{output: []byte("Traceback (most recent call last):\n")}
	adapter := NewExternalAdapter("semgrep", semgrepCommand(), nil, runner)

	result := adapter.Scan(context.Background(), domain.ReviewUnit{Path: "a.py", Content: []byte("x\n")})
	if result.Error == "" {
		t.Error("unparseable output should set the result error")
	}
}

func TestMapExternalSeverity(t *testing.T) {
	tests := map[string]domain.Severity{
		"CRITICAL": domain.SeverityCritical,
		"ERROR":    domain.SeverityHigh,
		"WARNING":  domain.SeverityMedium,
		"low":      domain.SeverityLow,
		"INFO":     domain.SeverityInfo,
		"whatever": domain.SeverityMedium,
	}
	for in, want := range tests {
		if got := mapExternalSeverity(in); got != want {
			t.Errorf("mapExternalSeverity(%q) = %s, want %s", in, got, want)
		}
	}
}
