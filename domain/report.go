package domain

import "time"

// Guidance is an educational block attached to a finding, looked up by rule
// id from the static guidance table. Absence of a guidance entry is not an
// error; the composer falls back to the finding's suggestion.
type Guidance struct {
	Why                 string   `json:"why" yaml:"why"`
	BadExample          string   `json:"bad_example,omitempty" yaml:"bad_example"`
	GoodExample         string   `json:"good_example,omitempty" yaml:"good_example"`
	Steps               []string `json:"steps,omitempty" yaml:"steps"`
	ReflectionQuestions []string `json:"reflection_questions,omitempty" yaml:"reflection_questions"`
}

// ReportFinding is a finding enriched for presentation
type ReportFinding struct {
	Finding
	Guidance *Guidance `json:"guidance,omitempty"`
}

// Report is the stable machine contract produced for the host layer. The
// text rendering is a secondary view derived from the same data.
type Report struct {
	Tool        string          `json:"tool"`
	Version     string          `json:"version"`
	RunID       string          `json:"run_id"`
	Success     bool            `json:"success"`
	Path        string          `json:"path"`
	Summary     Summary         `json:"summary"`
	Findings    []ReportFinding `json:"findings"`
	Notes       []string        `json:"notes,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	DurationMs  int64           `json:"duration_ms"`
}

// Verbosity controls how much detail the text rendering includes
type Verbosity int

const (
	VerbosityQuiet Verbosity = iota
	VerbosityNormal
	VerbosityDetailed
)

// ComposeOptions configures report composition
type ComposeOptions struct {
	Verbosity        Verbosity
	IncludeEducation bool
}

// ProjectReport aggregates per-file reports for a project-wide scan
type ProjectReport struct {
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	RunID       string    `json:"run_id"`
	Success     bool      `json:"success"`
	Root        string    `json:"root"`
	FilesTotal  int       `json:"files_total"`
	FilesFailed int       `json:"files_failed"`
	Summary     Summary   `json:"summary"`
	Reports     []*Report `json:"reports"`
	Notes       []string  `json:"notes,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	DurationMs  int64     `json:"duration_ms"`
}
